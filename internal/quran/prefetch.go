package quran

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/mariam/internal/model"
)

const (
	// AyatAlKursi is the display name of verse 2:255.
	AyatAlKursi = "آية الكرسي"

	ayatAlKursiSurah = 2
	ayatAlKursiAyah  = 255
	// Al-Kahf carries the Friday reading reminder.
	kahfSurah = 18

	defaultBatchSize         = 3
	defaultBatchDelay        = 2 * time.Second
	defaultEditionDelay      = time.Second
	defaultRequestsPerSecond = 3
)

// ProgressFunc reports prefetch progress after each batch.
type ProgressFunc func(done, total, percent int)

// Options tune the prefetcher's pacing.
type Options struct {
	BatchSize         int
	BatchDelay        time.Duration
	EditionDelay      time.Duration
	Translation       string
	RequestsPerSecond float64
}

// DefaultOptions returns batches of three surahs two seconds apart.
func DefaultOptions() Options {
	return Options{
		BatchSize:         defaultBatchSize,
		BatchDelay:        defaultBatchDelay,
		EditionDelay:      defaultEditionDelay,
		Translation:       DefaultTranslation,
		RequestsPerSecond: defaultRequestsPerSecond,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.BatchSize <= 0 {
		o.BatchSize = def.BatchSize
	}
	if o.BatchDelay < 0 {
		o.BatchDelay = def.BatchDelay
	}
	if o.EditionDelay < 0 {
		o.EditionDelay = def.EditionDelay
	}
	if o.Translation == "" {
		o.Translation = def.Translation
	}
	return o
}

// Prefetcher downloads the whole Quran in paced batches.
type Prefetcher struct {
	client   *Client
	opts     Options
	limiter  *rate.Limiter
	logger   zerolog.Logger
	progress ProgressFunc
	sleep    func(context.Context, time.Duration) error
}

// NewPrefetcher builds a Prefetcher. progress may be nil.
func NewPrefetcher(client *Client, opts Options, progress ProgressFunc, logger zerolog.Logger) *Prefetcher {
	opts = opts.normalized()
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Prefetcher{
		client:   client,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, opts.BatchSize),
		logger:   logger,
		progress: progress,
		sleep:    sleepContext,
	}
}

// Fetch downloads every surah with its translation. A failure of any surah
// fails the whole fetch.
func (p *Prefetcher) Fetch(ctx context.Context) ([]model.Surah, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	infos, err := p.client.Surahs(ctx)
	if err != nil {
		return nil, err
	}
	total := len(infos)
	surahs := make([]model.Surah, 0, total)
	p.report(0, total)

	for start := 0; start < total; start += p.opts.BatchSize {
		end := min(start+p.opts.BatchSize, total)
		p.logger.Debug().Int("from", start+1).Int("to", end).Msg("fetching surah batch")

		batch := make([]model.Surah, end-start)
		group, gctx := errgroup.WithContext(ctx)
		for i, info := range infos[start:end] {
			group.Go(func() error {
				surah, err := p.fetchSurah(gctx, info)
				if err != nil {
					return fmt.Errorf("failed to fetch surah %d: %w", info.Number, err)
				}
				batch[i] = surah
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
		surahs = append(surahs, batch...)
		p.report(len(surahs), total)

		if end < total {
			if err := p.sleep(ctx, p.opts.BatchDelay); err != nil {
				return nil, err
			}
		}
	}
	return surahs, nil
}

func (p *Prefetcher) fetchSurah(ctx context.Context, info SurahInfo) (model.Surah, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return model.Surah{}, err
	}
	arabic, err := p.client.Edition(ctx, info.Number, ArabicEdition)
	if err != nil {
		return model.Surah{}, err
	}
	if err := p.sleep(ctx, p.opts.EditionDelay); err != nil {
		return model.Surah{}, err
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return model.Surah{}, err
	}
	translated, err := p.client.Edition(ctx, info.Number, p.opts.Translation)
	if err != nil {
		return model.Surah{}, err
	}
	if len(translated) < len(arabic) {
		return model.Surah{}, fmt.Errorf("translation has %d verses, arabic has %d", len(translated), len(arabic))
	}
	p.logger.Debug().Int("surah", info.Number).Int("verses", len(arabic)).Msg("fetched surah")
	return assemble(info, arabic, translated), nil
}

// assemble zips the editions by index and marks notable verses.
func assemble(info SurahInfo, arabic, translated []Ayah) model.Surah {
	verses := make([]model.Verse, len(arabic))
	for i, a := range arabic {
		v := model.Verse{Number: a.NumberInSurah, Arabic: a.Text, English: translated[i].Text}
		if info.Number == ayatAlKursiSurah && a.NumberInSurah == ayatAlKursiAyah {
			v.IsSpecial = true
			v.SpecialName = AyatAlKursi
		}
		verses[i] = v
	}
	return model.Surah{
		Number:             info.Number,
		Name:               info.Name,
		EnglishName:        info.EnglishName,
		Verses:             verses,
		HasSpecialReminder: info.Number == kahfSurah,
	}
}

func (p *Prefetcher) report(done, total int) {
	if p.progress == nil {
		return
	}
	p.progress(done, total, Percent(done, total))
}

// Percent returns done/total as a rounded percentage.
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
