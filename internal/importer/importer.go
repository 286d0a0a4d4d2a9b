// 包 importer：编排一次家谱导入，从解析、替换原始记录、派生事件、批量地理编码到事件落库
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"family-atlas/internal/events"
	"family-atlas/internal/gedcom"
	"family-atlas/internal/logger"
	"family-atlas/internal/metrics"
	"family-atlas/internal/model"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/google/uuid"
)

// ErrInputUnreadable：输入完全无法读取；与 "运行了但零结果" 的 Result 区分
var ErrInputUnreadable = errors.New("import input unreadable")

// geohashPrecision 约 150m 网格
const geohashPrecision = 7

// Repository：导入所需的持久化接口，store.Store 与 store.Memory 均满足
type Repository interface {
	ReplaceGenealogy(ctx context.Context, ownerID string, persons []model.Person, links []model.FamilyLink) error
	InsertEvent(ctx context.Context, ev model.Event) error
}

// Resolver：批量地名解析，geocode.Service 满足
type Resolver interface {
	ResolveAll(ctx context.Context, places []string, progress func(done, total int)) map[string]*model.Coordinate
}

type Options struct {
	// Progress 在每个去重地名处理完后回调
	Progress func(done, total int)
	Now      func() time.Time
	NewID    func() string
}

// Result：导入摘要
type Result struct {
	Imported           int      `json:"imported"`
	Skipped            int      `json:"skipped"`
	PeopleDisplayNames []string `json:"peopleDisplayNames"`
	PeopleCount        int      `json:"peopleCount"`
	FamilyLinkCount    int      `json:"familyLinkCount"`
	Message            string   `json:"message"`
}

type Importer struct {
	repo     Repository
	resolver Resolver
	opts     Options
}

func New(repo Repository, resolver Resolver, o Options) *Importer {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = func() string { return uuid.NewString() }
	}
	return &Importer{repo: repo, resolver: resolver, opts: o}
}

// 文档注释：执行一次导入
// 背景：原始人员与家庭链接先整体替换（全量刷新，不合并），随后派生事件；
// 既无事件也无占位地点候选时直接返回说明性结果，不触发地理编码；否则批量解析去重后的地名，仅持久化解析成功的事件。
// 约束：单个地名解析失败只跳过对应事件；原始记录替换后、事件落库前失败时原始记录已更新，重新导入即可整体覆盖。
// 异常：输入读取失败返回包装 ErrInputUnreadable 的错误；仓库写入失败返回包装后的错误。
func (im *Importer) Import(ctx context.Context, r io.Reader, ownerID string) (*Result, error) {
	start := time.Now()
	defer func() { metrics.ImportDurationMs.Observe(float64(time.Since(start).Milliseconds())) }()

	parsed, err := gedcom.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputUnreadable, err)
	}
	logger.L().Info("import_begin", "owner", ownerID, "persons", len(parsed.Persons), "links", len(parsed.FamilyLinks), "skipped_lines", parsed.Skipped)

	if err := im.repo.ReplaceGenealogy(ctx, ownerID, parsed.Persons, parsed.FamilyLinks); err != nil {
		return nil, fmt.Errorf("replace genealogy: %w", err)
	}
	res := &Result{
		PeopleDisplayNames: []string{},
		PeopleCount:        len(parsed.Persons),
		FamilyLinkCount:    len(parsed.FamilyLinks),
	}

	derived, placeholders := events.Derive(parsed.Persons)
	if len(derived) == 0 && placeholders == 0 {
		res.Message = fmt.Sprintf("No datable events with places found; stored %d people and %d family links", res.PeopleCount, res.FamilyLinkCount)
		logger.L().Info("import_no_events", "owner", ownerID)
		return res, nil
	}
	// 地点为 "?" 的候选不产生事件，也不发起查询，直接计为跳过
	res.Skipped = placeholders
	metrics.ImportEventsTotal.WithLabelValues("skipped").Add(float64(placeholders))

	coords := map[string]*model.Coordinate{}
	if len(derived) > 0 {
		places := make([]string, 0, len(derived))
		for _, d := range derived {
			places = append(places, d.Place)
		}
		coords = im.resolver.ResolveAll(ctx, places, im.opts.Progress)
	}

	seen := map[string]struct{}{}
	for _, d := range derived {
		c := coords[d.Place]
		if c == nil {
			res.Skipped++
			metrics.ImportEventsTotal.WithLabelValues("skipped").Inc()
			logger.L().Debug("import_event_skipped", "title", d.Title, "place", d.Place)
			continue
		}
		if err := im.repo.InsertEvent(ctx, im.toEvent(ownerID, d, c)); err != nil {
			return nil, fmt.Errorf("persist event %q: %w", d.Title, err)
		}
		res.Imported++
		metrics.ImportEventsTotal.WithLabelValues("imported").Inc()
		if _, ok := seen[d.PersonDisplayName]; !ok {
			seen[d.PersonDisplayName] = struct{}{}
			res.PeopleDisplayNames = append(res.PeopleDisplayNames, d.PersonDisplayName)
		}
	}
	res.Message = fmt.Sprintf("Imported %d events for %d people (%d skipped); stored %d people and %d family links",
		res.Imported, len(res.PeopleDisplayNames), res.Skipped, res.PeopleCount, res.FamilyLinkCount)
	logger.L().Info("import_done", "owner", ownerID, "imported", res.Imported, "skipped", res.Skipped, "ms", time.Since(start).Milliseconds())
	return res, nil
}

func (im *Importer) toEvent(ownerID string, d model.DerivedEvent, c *model.Coordinate) model.Event {
	gh := geohash.Encode(c.Lat, c.Lon)
	if len(gh) > geohashPrecision {
		gh = gh[:geohashPrecision]
	}
	return model.Event{
		ID:          im.opts.NewID(),
		OwnerID:     ownerID,
		PersonName:  d.PersonDisplayName,
		Title:       d.Title,
		Description: d.Description,
		Date:        d.ISODate,
		RawDate:     d.RawDate,
		Place:       d.Place,
		Category:    d.Category,
		Latitude:    c.Lat,
		Longitude:   c.Lon,
		Geohash:     gh,
		Source:      model.SourceGedcom,
		CreatedAt:   im.opts.Now().UTC(),
	}
}
