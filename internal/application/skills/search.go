package skills

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/doeshing/aura-go/internal/application/registry"
	"github.com/doeshing/aura-go/internal/domain"
)

var (
	questionMarkers = []string{"who is", "what is", "meaning of", "define", "tell me about", "explain", "information on"}
	videoMarkers    = []string{"youtube", "video", "song", "music", "watch", "trailer", "movie"}

	searchNoise  = regexp.MustCompile(`(?i)\b(who is|what is|meaning of|define|tell me about|search for|search|google|on youtube|youtube|videos?|songs?|music|play|watch|information on|explain)\b`)
	youtubeNoise = regexp.MustCompile(`(?i)\b(on youtube|youtube|videos?|vedio|watch|play|songs?|search for|search)\b`)
	weatherCity  = regexp.MustCompile(`(?i)\bweather\s+(?:in|at|for)\s+(.+)$`)
)

const (
	defaultGoogleURL  = "https://www.google.com/search?q=%s"
	defaultYouTubeURL = "https://www.youtube.com/results?search_query=%s"
	defaultWeatherURL = "https://wttr.in/%s?format=3"
	defaultNewsURL    = "https://news.google.com"
	defaultCity       = "Delhi"
)

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func cleanQuery(pattern *regexp.Regexp, text string) string {
	return strings.Join(strings.Fields(pattern.ReplaceAllString(text, " ")), " ")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// smartSearch is the catch-all: canned answers, encyclopedia lookups, videos,
// websites and finally a Google search.
func (s *Skills) smartSearch(ctx context.Context, req registry.Request) (domain.Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return domain.Failure("Please say something."), nil
	}
	if answer, ok := s.faq.Answer(text); ok {
		return domain.Success(answer), nil
	}

	lowered := strings.ToLower(text)
	query := orDefault(cleanQuery(searchNoise, text), text)

	switch {
	case containsAny(lowered, questionMarkers):
		if s.deps.Knowledge != nil {
			summary, err := s.deps.Knowledge.Summary(ctx, query)
			if err == nil && summary != "" {
				return domain.Success(summary), nil
			}
			if err != nil {
				s.warn("knowledge lookup failed", map[string]interface{}{"query": query, "error": err.Error()})
			}
		}
		return s.google(ctx, query), nil
	case containsAny(lowered, videoMarkers):
		return s.searchYouTube(ctx, query), nil
	case strings.HasPrefix(lowered, "open "):
		site := strings.TrimSpace(text[len("open "):])
		return s.openWebsite(ctx, site), nil
	default:
		return s.google(ctx, query), nil
	}
}

func (s *Skills) google(ctx context.Context, query string) domain.Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Failure("Empty search query.")
	}
	link := fmt.Sprintf(orDefault(s.deps.Config.Search.GoogleURL, defaultGoogleURL), url.QueryEscape(query))
	if err := s.deps.Executor.OpenURL(ctx, link); err != nil {
		return domain.Failure(fmt.Sprintf("Could not open the browser: %v", err))
	}
	return domain.Success(fmt.Sprintf("Searching Google for '%s'...", query))
}

func (s *Skills) searchYouTube(ctx context.Context, query string) domain.Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Failure("Empty YouTube query.")
	}
	link := fmt.Sprintf(orDefault(s.deps.Config.Search.YouTubeURL, defaultYouTubeURL), url.QueryEscape(query))
	if err := s.deps.Executor.OpenURL(ctx, link); err != nil {
		return domain.Failure(fmt.Sprintf("Could not open the browser: %v", err))
	}
	return domain.Success(fmt.Sprintf("Searching YouTube for '%s'...", query))
}

// openWebsite opens site, treating a bare word as www.<word>.com.
func (s *Skills) openWebsite(ctx context.Context, site string) domain.Result {
	site = strings.ToLower(strings.TrimSpace(site))
	if site == "" {
		return domain.Failure("Which website should I open?")
	}
	link := site
	if !strings.Contains(site, ".") {
		site = strings.ReplaceAll(site, " ", "")
		link = "https://www." + site + ".com"
	} else if !strings.Contains(site, "://") {
		link = "https://" + site
	}
	if err := s.deps.Executor.OpenURL(ctx, link); err != nil {
		return domain.Failure(fmt.Sprintf("Could not open %s: %v", site, err))
	}
	return domain.Success(fmt.Sprintf("Opening %s...", site))
}

func (s *Skills) youtube(ctx context.Context, req registry.Request) (domain.Result, error) {
	return s.searchYouTube(ctx, cleanQuery(youtubeNoise, req.Text)), nil
}

func (s *Skills) weather(ctx context.Context, req registry.Request) (domain.Result, error) {
	city := orDefault(s.deps.Config.Search.DefaultCity, defaultCity)
	if m := weatherCity.FindStringSubmatch(strings.TrimSpace(req.Text)); m != nil {
		city = strings.TrimSpace(strings.TrimRight(m[1], "?.!"))
	}
	link := fmt.Sprintf(orDefault(s.deps.Config.Search.WeatherURL, defaultWeatherURL), url.PathEscape(city))
	if err := s.deps.Executor.OpenURL(ctx, link); err != nil {
		return domain.Failure(fmt.Sprintf("Could not open the weather report: %v", err)), nil
	}
	return domain.Success("Weather for " + city), nil
}

func (s *Skills) news(ctx context.Context, _ registry.Request) (domain.Result, error) {
	if err := s.deps.Executor.OpenURL(ctx, orDefault(s.deps.Config.Search.NewsURL, defaultNewsURL)); err != nil {
		return domain.Failure(fmt.Sprintf("Could not open the news: %v", err)), nil
	}
	return domain.Success("Google News opened"), nil
}

func (s *Skills) answerFAQ(ctx context.Context, req registry.Request) (domain.Result, error) {
	if answer, ok := s.faq.Answer(req.Text); ok {
		return domain.Success(answer), nil
	}
	return s.smartSearch(ctx, req)
}
