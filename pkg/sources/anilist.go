package sources

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/mapper"
	"github.com/kerbaras/shinobix/pkg/utils"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shurcooL/graphql"
)

const DefaultAniListEndpoint = "https://graphql.anilist.co"

// MediaSort mirrors the AniList enum of the same name. The type name is
// what the GraphQL client declares for the variable.
type MediaSort string

func aniListSort(sort SortOrder) []MediaSort {
	switch sort {
	case SortScore:
		return []MediaSort{"SCORE_DESC"}
	case SortRecent:
		return []MediaSort{"START_DATE_DESC"}
	case SortTrending:
		return []MediaSort{"TRENDING_DESC"}
	default:
		return []MediaSort{"POPULARITY_DESC"}
	}
}

type aniTitle struct {
	Romaji        *string `graphql:"romaji"`
	English       *string `graphql:"english"`
	Native        *string `graphql:"native"`
	UserPreferred *string `graphql:"userPreferred"`
}

func (t aniTitle) toMap() map[string]string {
	return map[string]string{
		"romaji":        lo.FromPtr(t.Romaji),
		"english":       lo.FromPtr(t.English),
		"native":        lo.FromPtr(t.Native),
		"userPreferred": lo.FromPtr(t.UserPreferred),
	}
}

type AniListMedia struct {
	ID         int      `graphql:"id"`
	Title      aniTitle `graphql:"title"`
	CoverImage struct {
		ExtraLarge *string `graphql:"extraLarge"`
		Large      *string `graphql:"large"`
		Medium     *string `graphql:"medium"`
	} `graphql:"coverImage"`
	BannerImage  *string  `graphql:"bannerImage"`
	Description  *string  `graphql:"description(asHtml: false)"`
	Episodes     *int     `graphql:"episodes"`
	SeasonYear   *int     `graphql:"seasonYear"`
	AverageScore *int     `graphql:"averageScore"`
	Status       *string  `graphql:"status"`
	Genres       []string `graphql:"genres"`
}

type aniStreamingEpisode struct {
	Title     *string `graphql:"title"`
	URL       *string `graphql:"url"`
	Thumbnail *string `graphql:"thumbnail"`
}

type aniStudio struct {
	Name string `graphql:"name"`
}

// AniListMediaDetail embeds AniListMedia; the GraphQL client inlines
// embedded structs into the selection set.
type AniListMediaDetail struct {
	AniListMedia
	Studios struct {
		Nodes []aniStudio `graphql:"nodes"`
	} `graphql:"studios(isMain: true)"`
	StreamingEpisodes []aniStreamingEpisode `graphql:"streamingEpisodes"`
}

func (m *AniListMedia) ToMediaItem(opts Options) data.MediaItem {
	score := mo.None[float64]()
	if m.AverageScore != nil && *m.AverageScore > 0 {
		score = mo.Some(float64(*m.AverageScore) / 10)
	}
	return data.MediaItem{
		ID:    strconv.Itoa(m.ID),
		Kind:  data.KindAnime,
		Title: mapper.ResolveTitle(m.Title.toMap(), opts.TitleLanguage),
		Cover: mapper.ResolveCover(
			lo.FromPtr(m.CoverImage.ExtraLarge),
			lo.FromPtr(m.CoverImage.Large),
			lo.FromPtr(m.CoverImage.Medium),
		),
		Banner:       lo.FromPtr(m.BannerImage),
		Year:         lo.FromPtr(m.SeasonYear),
		Status:       mapper.ResolveStatus(lo.FromPtr(m.Status)),
		Score:        score,
		Genres:       mapper.LimitGenres(m.Genres, opts.GenreLimit),
		Description:  mapper.CleanRichText(lo.FromPtr(m.Description)),
		EpisodeCount: lo.FromPtr(m.Episodes),
	}
}

var episodeTitle = regexp.MustCompile(`(?i)^episode\s+(\d+)\s*(?:[-:]\s*(.*))?$`)

// episodes turns AniList streaming links into an ascending feed. When no
// streaming site is listed, the declared episode count is used and every
// episode points at the AniList page.
func (m *AniListMediaDetail) episodes() []data.Entry {
	mediaID := strconv.Itoa(m.ID)
	entries := make([]data.Entry, 0, len(m.StreamingEpisodes))
	for i, ep := range m.StreamingEpisodes {
		n, title := i+1, strings.TrimSpace(lo.FromPtr(ep.Title))
		if match := episodeTitle.FindStringSubmatch(title); match != nil {
			n, _ = strconv.Atoi(match[1])
			title = strings.TrimSpace(match[2])
		}
		src := lo.FromPtr(ep.URL)
		if src == "" {
			continue
		}
		entries = append(entries, data.Entry{
			ID:      strconv.Itoa(n),
			MediaID: mediaID,
			N:       n,
			Title:   title,
			Source:  src,
		})
	}

	if len(entries) == 0 {
		page := fmt.Sprintf("https://anilist.co/anime/%d", m.ID)
		for n := 1; n <= lo.FromPtr(m.Episodes); n++ {
			entries = append(entries, data.Entry{
				ID:      strconv.Itoa(n),
				MediaID: mediaID,
				N:       n,
				Title:   fmt.Sprintf("Episode %d", n),
				Source:  page,
			})
		}
	}

	entries = lo.UniqBy(entries, func(e data.Entry) int { return e.N })
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].N < entries[j].N })
	return entries
}

type AniListConfig struct {
	Endpoint string
	Client   *http.Client
	Options
}

// AniList is the anime catalog. Requests go straight to the GraphQL
// endpoint; a non-2xx answer fails the call immediately.
type AniList struct {
	client *graphql.Client
	opts   Options
}

func NewAniList(cfg AniListConfig) *AniList {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultAniListEndpoint
	}
	if cfg.Client == nil {
		cfg.Client = utils.NewHTTPClient(0)
	}
	return &AniList{client: graphql.NewClient(cfg.Endpoint, cfg.Client), opts: cfg.Options}
}

func (a *AniList) Kind() data.MediaKind { return data.KindAnime }

func (a *AniList) toItems(media []AniListMedia) []data.MediaItem {
	return lo.Map(media, func(m AniListMedia, _ int) data.MediaItem {
		return m.ToMediaItem(a.opts)
	})
}

func (a *AniList) Search(ctx context.Context, term string, sort SortOrder) ([]data.MediaItem, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return a.List(ctx, sort)
	}

	var query struct {
		Page struct {
			Media []AniListMedia `graphql:"media(type: ANIME, isAdult: false, search: $search, sort: $sort)"`
		} `graphql:"Page(page: 1, perPage: $perPage)"`
	}
	variables := map[string]any{
		"search":  graphql.String(term),
		"sort":    append([]MediaSort{"SEARCH_MATCH"}, aniListSort(sort)...),
		"perPage": graphql.Int(a.opts.pageSize()),
	}
	if err := a.client.Query(ctx, &query, variables); err != nil {
		return nil, catalogError("search", err)
	}
	return a.toItems(query.Page.Media), nil
}

func (a *AniList) List(ctx context.Context, sort SortOrder) ([]data.MediaItem, error) {
	var query struct {
		Page struct {
			Media []AniListMedia `graphql:"media(type: ANIME, isAdult: false, sort: $sort)"`
		} `graphql:"Page(page: 1, perPage: $perPage)"`
	}
	variables := map[string]any{
		"sort":    aniListSort(sort),
		"perPage": graphql.Int(a.opts.pageSize()),
	}
	if err := a.client.Query(ctx, &query, variables); err != nil {
		return nil, catalogError("list", err)
	}
	return a.toItems(query.Page.Media), nil
}

// ListByIDs keeps the order of ids. Non-numeric ids cannot exist on
// AniList and are skipped.
func (a *AniList) ListByIDs(ctx context.Context, ids []string) ([]data.MediaItem, error) {
	numeric := lo.Uniq(lo.FilterMap(ids, func(id string, _ int) (graphql.Int, bool) {
		n, err := strconv.Atoi(id)
		return graphql.Int(n), err == nil
	}))
	if len(numeric) == 0 {
		return []data.MediaItem{}, nil
	}

	var query struct {
		Page struct {
			Media []AniListMedia `graphql:"media(type: ANIME, id_in: $ids)"`
		} `graphql:"Page(page: 1, perPage: $perPage)"`
	}
	variables := map[string]any{
		"ids":     numeric,
		"perPage": graphql.Int(len(numeric)),
	}
	if err := a.client.Query(ctx, &query, variables); err != nil {
		return nil, catalogError("list", err)
	}

	byID := lo.KeyBy(a.toItems(query.Page.Media), func(it data.MediaItem) string { return it.ID })
	return lo.FilterMap(ids, func(id string, _ int) (data.MediaItem, bool) {
		it, ok := byID[id]
		delete(byID, id)
		return it, ok
	}), nil
}

func (a *AniList) detail(ctx context.Context, id string) (*AniListMediaDetail, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil, errors.Wrapf(ErrNotFound, "anime %q", id)
	}

	var query struct {
		Media AniListMediaDetail `graphql:"Media(id: $id, type: ANIME)"`
	}
	if err := a.client.Query(ctx, &query, map[string]any{"id": graphql.Int(n)}); err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf(ErrNotFound, "anime %s", id)
		}
		return nil, err
	}
	if query.Media.ID == 0 {
		return nil, errors.Wrapf(ErrNotFound, "anime %s", id)
	}
	return &query.Media, nil
}

// isNotFound recognises AniList's answer for an unknown media id, which
// arrives as an HTTP 404 with a GraphQL error body.
func isNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "404") || strings.Contains(msg, "Not Found")
}

func (a *AniList) GetDetail(ctx context.Context, id string) (data.MediaItem, error) {
	media, err := a.detail(ctx, id)
	if err != nil {
		return data.MediaItem{}, catalogError("detail", err)
	}
	item := media.ToMediaItem(a.opts)
	item.Studios = lo.Uniq(lo.FilterMap(media.Studios.Nodes, func(s aniStudio, _ int) (string, bool) {
		return s.Name, s.Name != ""
	}))
	if item.EpisodeCount == 0 {
		item.EpisodeCount = len(media.episodes())
	}
	return item, nil
}

func (a *AniList) GetFeed(ctx context.Context, id string) (data.Feed, error) {
	media, err := a.detail(ctx, id)
	if err != nil {
		return data.Feed{}, catalogError("feed", err)
	}
	return data.Feed{
		MediaID: id,
		Kind:    data.KindAnime,
		Order:   data.Ascending,
		Entries: media.episodes(),
	}, nil
}

func (a *AniList) GetEntry(ctx context.Context, mediaID, entryID string) (data.Entry, error) {
	feed, err := a.GetFeed(ctx, mediaID)
	if err != nil {
		return data.Entry{}, err
	}
	idx := feed.IndexOf(entryID)
	if idx < 0 {
		return data.Entry{}, errors.Wrapf(ErrNotFound, "episode %s of anime %s", entryID, mediaID)
	}
	return feed.Entries[idx], nil
}

// GetPlayable ignores quality: an episode has exactly one source.
func (a *AniList) GetPlayable(ctx context.Context, mediaID, entryID string, _ data.Quality) ([]string, error) {
	entry, err := a.GetEntry(ctx, mediaID, entryID)
	if err != nil {
		return nil, err
	}
	return []string{entry.Source}, nil
}
