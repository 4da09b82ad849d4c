package cmd

import (
	"fmt"
	"os"

	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/services"
	"github.com/kerbaras/shinobix/pkg/sources"
	"github.com/kerbaras/shinobix/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

type runtime struct {
	closeStore func() error
	controller *services.Controller
}

func newRuntime() (*runtime, error) {
	proxies, err := utils.ProxiesByName(cfg.Fetch.Proxies)
	if err != nil {
		return nil, err
	}

	var store data.Store
	closeStore := func() error { return nil }
	sqlStore, err := data.OpenStore(cfg.DB.Driver, cfg.DB.Path)
	if err != nil {
		utils.Warn("database unavailable, using memory store", "path", cfg.DB.Path, "err", err)
		fmt.Fprintln(os.Stderr, "⚠ Couldn't open the database; favorites and history won't be saved this session.")
		store = data.NewMemoryStore()
	} else {
		store = sqlStore
		closeStore = sqlStore.Close
	}

	client := utils.NewHTTPClient(cfg.Fetch.Timeout)
	limiter := rate.NewLimiter(rate.Limit(cfg.MangaDex.Rate), 1)
	fetcher := utils.NewFetcher(utils.FetcherOptions{
		Client:  client,
		Proxies: proxies,
		Retries: cfg.Fetch.Retries,
		Backoff: utils.LinearBackoff(cfg.Fetch.BaseDelay, cfg.Fetch.StepDelay),
		Limiter: limiter,
	})
	// scores are optional, one pass is enough
	statsFetcher := utils.NewFetcher(utils.FetcherOptions{
		Client:  client,
		Proxies: proxies,
		Limiter: limiter,
	})

	opts := sources.Options{
		PageSize:      cfg.Catalog.PageSize,
		GenreLimit:    cfg.Catalog.GenreLimit,
		TitleLanguage: cfg.UI.TitleLanguage,
	}
	anilist := sources.NewAniList(sources.AniListConfig{
		Endpoint: cfg.AniList.Endpoint,
		Client:   client,
		Options:  opts,
	})
	mangadex := sources.NewMangaDex(fetcher, sources.MangaDexConfig{
		BaseURL:    cfg.MangaDex.API,
		UploadsURL: cfg.MangaDex.Uploads,
		Language:   cfg.MangaDex.Language,
		Statistics: statsFetcher,
		Options:    opts,
	})

	library := data.NewLibrary(store)
	controller := services.NewController(library, services.ControllerOptions{TopLimit: cfg.Catalog.TopLimit}, anilist, mangadex)

	return &runtime{closeStore: closeStore, controller: controller}, nil
}

func (r *runtime) Close() {
	if err := r.closeStore(); err != nil {
		utils.Warn("failed to close database", "err", err)
	}
}

func withRuntime(fn func(rt *runtime)) {
	rt, err := newRuntime()
	cobra.CheckErr(err)
	defer rt.Close()
	fn(rt)
}
