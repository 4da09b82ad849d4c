package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/mapper"
	"github.com/kerbaras/shinobix/pkg/utils"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sourcegraph/conc"
)

const (
	DefaultMangaDexAPI     = "https://api.mangadex.org"
	DefaultMangaDexUploads = "https://uploads.mangadex.org"
	DefaultMangaDexLang    = "en"

	maxFeedSize = 500
)

// JSONFetcher is the transport MangaDex requests go through.
type JSONFetcher interface {
	FetchJSON(ctx context.Context, target string, v any) error
}

type relationship struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		FileName string `json:"fileName"`
		Name     string `json:"name"`
	} `json:"attributes"`
}

type mangaTag struct {
	Attributes struct {
		Name  map[string]string `json:"name"`
		Group string            `json:"group"`
	} `json:"attributes"`
}

type Manga struct {
	ID         string `json:"id"`
	Attributes struct {
		Title       map[string]string   `json:"title"`
		AltTitles   []map[string]string `json:"altTitles"`
		Description map[string]string   `json:"description"`
		Status      string              `json:"status"`
		Year        *int                `json:"year"`
		Tags        []mangaTag          `json:"tags"`
	} `json:"attributes"`
	Relationships []relationship `json:"relationships"`
}

func (m *Manga) ToMediaItem(uploads string, opts Options) data.MediaItem {
	attrs := m.Attributes
	titles := mapper.MergeTitles(attrs.Title, attrs.AltTitles...)

	var cover string
	var authors []string
	for _, rel := range m.Relationships {
		switch rel.Type {
		case "cover_art":
			if cover == "" {
				cover = mapper.MangaDexCover(uploads, m.ID, rel.Attributes.FileName)
			}
		case "author", "artist":
			if rel.Attributes.Name != "" {
				authors = append(authors, rel.Attributes.Name)
			}
		}
	}

	genres := lo.FilterMap(attrs.Tags, func(tag mangaTag, _ int) (string, bool) {
		name := tag.Attributes.Name["en"]
		return name, name != "" && (tag.Attributes.Group == "genre" || tag.Attributes.Group == "theme")
	})

	description := attrs.Description[opts.TitleLanguage]
	if description == "" {
		description = attrs.Description["en"]
	}

	return data.MediaItem{
		ID:          m.ID,
		Kind:        data.KindManga,
		Title:       mapper.ResolveTitle(titles, opts.TitleLanguage),
		Cover:       cover,
		Year:        lo.FromPtr(attrs.Year),
		Status:      mapper.ResolveStatus(attrs.Status),
		Genres:      mapper.LimitGenres(genres, opts.GenreLimit),
		Authors:     lo.Uniq(authors),
		Description: mapper.CleanRichText(description),
	}
}

type Chapter struct {
	ID         string `json:"id"`
	Attributes struct {
		Title    string `json:"title"`
		Language string `json:"translatedLanguage"`
		Volume   string `json:"volume"`
		Number   string `json:"chapter"`
		Pages    int    `json:"pages"`
	} `json:"attributes"`
	Relationships []relationship `json:"relationships"`
}

func (c *Chapter) ToEntry(mediaID string) data.Entry {
	if mediaID == "" {
		if rel, ok := lo.Find(c.Relationships, func(r relationship) bool { return r.Type == "manga" }); ok {
			mediaID = rel.ID
		}
	}
	return data.Entry{
		ID:       c.ID,
		MediaID:  mediaID,
		Chapter:  c.Attributes.Number,
		Volume:   c.Attributes.Volume,
		Title:    c.Attributes.Title,
		Language: c.Attributes.Language,
		Pages:    c.Attributes.Pages,
	}
}

type atHomeServer struct {
	BaseURL string `json:"baseUrl"`
	Chapter struct {
		Hash      string   `json:"hash"`
		Data      []string `json:"data"`
		DataSaver []string `json:"dataSaver"`
	} `json:"chapter"`
}

type MangaDexConfig struct {
	BaseURL    string
	UploadsURL string
	Language   string
	// Statistics serves the optional score lookup; nil means the main
	// fetcher. It should not retry since a missing score is harmless.
	Statistics JSONFetcher
	Options
}

// MangaDex is the manga catalog. Every request goes through the fetcher,
// so proxies, retries and rate limiting are its concern.
type MangaDex struct {
	fetcher JSONFetcher
	stats   JSONFetcher
	cfg     MangaDexConfig
}

func NewMangaDex(fetcher JSONFetcher, cfg MangaDexConfig) *MangaDex {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMangaDexAPI
	}
	if cfg.UploadsURL == "" {
		cfg.UploadsURL = DefaultMangaDexUploads
	}
	if cfg.Language == "" {
		cfg.Language = DefaultMangaDexLang
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	stats := cfg.Statistics
	if stats == nil {
		stats = fetcher
	}
	return &MangaDex{fetcher: fetcher, stats: stats, cfg: cfg}
}

func (m *MangaDex) Kind() data.MediaKind { return data.KindManga }

func (m *MangaDex) get(ctx context.Context, path string, params url.Values, v any) error {
	target := m.endpoint(path, params)
	return m.fetch(ctx, m.fetcher, target, v)
}

func (m *MangaDex) endpoint(path string, params url.Values) string {
	target := m.cfg.BaseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	return target
}

// fetch turns a 404 from MangaDex itself into ErrNotFound.
func (m *MangaDex) fetch(ctx context.Context, f JSONFetcher, target string, v any) error {
	err := f.FetchJSON(ctx, target, v)
	if errors.Is(err, utils.ErrNotFound) {
		return errors.Wrap(ErrNotFound, err.Error())
	}
	return err
}

func (m *MangaDex) listParams(sort SortOrder) url.Values {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(m.cfg.pageSize()))
	params.Add("includes[]", "cover_art")
	params.Add("includes[]", "author")
	params.Add("contentRating[]", "safe")
	params.Add("contentRating[]", "suggestive")
	params.Set(mangaDexOrder(sort), "desc")
	return params
}

func mangaDexOrder(sort SortOrder) string {
	switch sort {
	case SortScore:
		return "order[rating]"
	case SortRecent:
		return "order[latestUploadedChapter]"
	default:
		return "order[followedCount]"
	}
}

func (m *MangaDex) fetchList(ctx context.Context, params url.Values) ([]data.MediaItem, error) {
	var resp struct {
		Data []Manga `json:"data"`
	}
	if err := m.get(ctx, "/manga", params, &resp); err != nil {
		return nil, err
	}
	out := make([]data.MediaItem, len(resp.Data))
	for i, manga := range resp.Data {
		out[i] = manga.ToMediaItem(m.cfg.UploadsURL, m.cfg.Options)
	}
	return out, nil
}

func (m *MangaDex) Search(ctx context.Context, term string, sort SortOrder) ([]data.MediaItem, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return m.List(ctx, sort)
	}
	params := m.listParams(sort)
	params.Set("title", term)
	items, err := m.fetchList(ctx, params)
	return items, catalogError("search", err)
}

func (m *MangaDex) List(ctx context.Context, sort SortOrder) ([]data.MediaItem, error) {
	items, err := m.fetchList(ctx, m.listParams(sort))
	return items, catalogError("list", err)
}

// ListByIDs keeps the order of ids and silently drops ids MangaDex no
// longer knows about.
func (m *MangaDex) ListByIDs(ctx context.Context, ids []string) ([]data.MediaItem, error) {
	ids = lo.Uniq(lo.Compact(ids))
	if len(ids) == 0 {
		return []data.MediaItem{}, nil
	}
	params := m.listParams(SortPopular)
	params.Set("limit", strconv.Itoa(len(ids)))
	for _, id := range ids {
		params.Add("ids[]", id)
	}
	items, err := m.fetchList(ctx, params)
	if err != nil {
		return nil, catalogError("list", err)
	}
	byID := lo.KeyBy(items, func(it data.MediaItem) string { return it.ID })
	return lo.FilterMap(ids, func(id string, _ int) (data.MediaItem, bool) {
		it, ok := byID[id]
		return it, ok
	}), nil
}

func (m *MangaDex) GetDetail(ctx context.Context, id string) (data.MediaItem, error) {
	params := url.Values{}
	params.Add("includes[]", "cover_art")
	params.Add("includes[]", "author")
	params.Add("includes[]", "artist")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var score mo.Option[float64]
	var wg conc.WaitGroup
	wg.Go(func() { score = m.score(ctx, id) })

	var resp struct {
		Data Manga `json:"data"`
	}
	err := m.get(ctx, "/manga/"+url.PathEscape(id), params, &resp)
	if err != nil {
		cancel()
	}
	wg.Wait()

	if err != nil {
		return data.MediaItem{}, catalogError("detail", err)
	}
	if resp.Data.ID == "" {
		return data.MediaItem{}, errors.Wrapf(ErrNotFound, "manga %s", id)
	}

	item := resp.Data.ToMediaItem(m.cfg.UploadsURL, m.cfg.Options)
	item.Score = score
	return item, nil
}

// score is best effort: a failed statistics call leaves the score unset.
func (m *MangaDex) score(ctx context.Context, id string) mo.Option[float64] {
	var resp struct {
		Statistics map[string]struct {
			Rating struct {
				Average  *float64 `json:"average"`
				Bayesian *float64 `json:"bayesian"`
			} `json:"rating"`
		} `json:"statistics"`
	}
	if err := m.fetch(ctx, m.stats, m.endpoint("/statistics/manga/"+url.PathEscape(id), nil), &resp); err != nil {
		utils.Debug("statistics unavailable", "manga", id, "err", err)
		return mo.None[float64]()
	}
	stats, ok := resp.Statistics[id]
	if !ok {
		return mo.None[float64]()
	}
	if stats.Rating.Bayesian != nil && *stats.Rating.Bayesian > 0 {
		return mo.Some(*stats.Rating.Bayesian)
	}
	return mo.PointerToOption(stats.Rating.Average)
}

// GetFeed returns chapters newest first. Chapters without pages are
// placeholders for externally hosted or unreleased releases and are dropped.
func (m *MangaDex) GetFeed(ctx context.Context, id string) (data.Feed, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(maxFeedSize))
	params.Add("translatedLanguage[]", m.cfg.Language)
	params.Set("order[volume]", "desc")
	params.Set("order[chapter]", "desc")
	params.Add("contentRating[]", "safe")
	params.Add("contentRating[]", "suggestive")

	var resp struct {
		Data []Chapter `json:"data"`
	}
	if err := m.get(ctx, "/manga/"+url.PathEscape(id)+"/feed", params, &resp); err != nil {
		return data.Feed{}, catalogError("feed", err)
	}

	entries := make([]data.Entry, 0, len(resp.Data))
	for _, ch := range resp.Data {
		if ch.Attributes.Pages <= 0 {
			continue
		}
		entries = append(entries, ch.ToEntry(id))
	}
	return data.Feed{MediaID: id, Kind: data.KindManga, Order: data.Descending, Entries: entries}, nil
}

func (m *MangaDex) GetEntry(ctx context.Context, mediaID, entryID string) (data.Entry, error) {
	var resp struct {
		Data Chapter `json:"data"`
	}
	if err := m.get(ctx, "/chapter/"+url.PathEscape(entryID), nil, &resp); err != nil {
		return data.Entry{}, catalogError("entry", err)
	}
	if resp.Data.ID == "" {
		return data.Entry{}, errors.Wrapf(ErrNotFound, "chapter %s", entryID)
	}
	return resp.Data.ToEntry(mediaID), nil
}

// GetPlayable resolves the chapter's delivery server and builds page URLs
// in the order the server lists the files.
func (m *MangaDex) GetPlayable(ctx context.Context, _, entryID string, quality data.Quality) ([]string, error) {
	if !quality.Valid() {
		quality = data.QualityData
	}

	var server atHomeServer
	if err := m.get(ctx, "/at-home/server/"+url.PathEscape(entryID), nil, &server); err != nil {
		return nil, catalogError("playable", err)
	}
	if server.BaseURL == "" || server.Chapter.Hash == "" {
		return nil, errors.Wrapf(ErrNotFound, "delivery server for chapter %s", entryID)
	}

	files := server.Chapter.Data
	if quality == data.QualityDataSaver {
		files = server.Chapter.DataSaver
	}
	base := strings.TrimRight(server.BaseURL, "/")
	pages := make([]string, len(files))
	for i, file := range files {
		pages[i] = fmt.Sprintf("%s/%s/%s/%s", base, quality, server.Chapter.Hash, file)
	}
	return pages, nil
}
