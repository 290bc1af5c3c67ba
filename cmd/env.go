package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/milldrew/journeylog/internal/address"
	"github.com/milldrew/journeylog/internal/gazetteer"
	"github.com/milldrew/journeylog/internal/maplink"
	"github.com/milldrew/journeylog/internal/resolver"
	"github.com/milldrew/journeylog/internal/store"
	"github.com/milldrew/journeylog/internal/visit"
	"github.com/milldrew/journeylog/pkg/geocode"
	"github.com/milldrew/journeylog/pkg/postcodes"
	"github.com/milldrew/journeylog/pkg/routing"
)

// appEnv bundles the wired application: storage, the resolver pipeline and
// the local timezone.
type appEnv struct {
	Store    store.Store
	Resolver *resolver.Resolver
	Loc      *time.Location
}

// Close releases the environment's resources.
func (e *appEnv) Close() {
	_ = e.Store.Close()
}

// initStore opens the configured storage backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEnv wires the full resolution pipeline from configuration.
func initEnv(ctx context.Context) (*appEnv, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, eris.Wrapf(err, "load timezone %s", cfg.Timezone)
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	known, err := gazetteer.LoadKnownAddresses(cfg.Journey.KnownAddressesPath)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	table, err := gazetteer.LoadTable(cfg.Journey.SettlementsPath)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	geocoder := geocode.New(known,
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
		geocode.WithGeoNamesUser(cfg.Geocode.GeoNamesUsername),
		geocode.WithRegion(cfg.Geocode.Region),
	)

	router := routing.New(cfg.Routing.ORSKey,
		routing.WithMinInterval(time.Duration(cfg.Routing.MinIntervalSecs)*time.Second),
	)

	now := func() time.Time { return time.Now().In(loc) }

	res := resolver.New(resolver.Deps{
		Normalizer:  maplink.New(),
		Geocoder:    geocoder,
		Parser:      address.New(table),
		Classifier:  visit.New(known),
		Router:      router,
		Towns:       postcodes.New(),
		History:     st,
		HomeAddress: cfg.Journey.HomeAddress,
		Now:         now,
	})

	return &appEnv{Store: st, Resolver: res, Loc: loc}, nil
}
