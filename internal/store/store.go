// 包 store: 提供与 PostgreSQL 的数据访问层，包含家谱记录、导入事件与在线成员关系的读写
package store

import (
	"context"
	"database/sql"
	"fmt"

	"family-atlas/internal/logger"
	"family-atlas/internal/model"

	"github.com/lib/pq"
)

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }


// 文档注释：整体替换某个所有者的家谱记录
// 背景：导入是破坏性的；同一事务内删除旧的人员、家庭链接以及由导入产生的事件，再按源顺序写入新记录。
// 约束：任一语句失败即回滚，所有者的数据保持导入前状态。
func (s *Store) ReplaceGenealogy(ctx context.Context, ownerID string, persons []model.Person, links []model.FamilyLink) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM fa_events WHERE owner_id=$1 AND source=$2`, ownerID, model.SourceGedcom); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM fa_family_links WHERE owner_id=$1`, ownerID); err != nil {
		return fmt.Errorf("clear family links: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM fa_persons WHERE owner_id=$1`, ownerID); err != nil {
		return fmt.Errorf("clear persons: %w", err)
	}
	for _, p := range persons {
		if _, err = tx.ExecContext(ctx, `INSERT INTO fa_persons(owner_id, position, external_id, given_name, surname, sex,
            birth_date, birth_place, death_date, death_place, burial_place)
            VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			ownerID, p.Position, p.ExternalID, p.GivenName, p.Surname, string(p.Sex),
			p.Birth.Date, p.Birth.Place, p.Death.Date, p.Death.Place, p.BurialPlace); err != nil {
			return fmt.Errorf("insert person %s: %w", p.ExternalID, err)
		}
	}
	for _, l := range links {
		kids := l.ChildIDs
		if kids == nil {
			kids = []string{}
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO fa_family_links(owner_id, position, external_family_id, husband_id, wife_id, child_ids)
            VALUES($1,$2,$3,$4,$5,$6)`,
			ownerID, l.Position, l.ExternalFamilyID, l.HusbandID, l.WifeID, pq.Array(kids)); err != nil {
			return fmt.Errorf("insert family link %s: %w", l.ExternalFamilyID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	logger.L().Debug("db_genealogy_replaced", "owner", ownerID, "persons", len(persons), "links", len(links))
	return nil
}

// InsertEvent: 写入一条已定位的事件
func (s *Store) InsertEvent(ctx context.Context, ev model.Event) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO fa_events(id, owner_id, person_name, title, description, event_date, raw_date,
        place, category, latitude, longitude, geohash, source, created_at)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		ev.ID, ev.OwnerID, ev.PersonName, ev.Title, ev.Description, ev.Date, ev.RawDate,
		ev.Place, ev.Category, ev.Latitude, ev.Longitude, ev.Geohash, ev.Source, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListEvents: 按日期读取所有者的事件
func (s *Store) ListEvents(ctx context.Context, ownerID string) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, owner_id, person_name, title, description, event_date, raw_date,
        place, category, latitude, longitude, geohash, source, created_at
        FROM fa_events WHERE owner_id=$1 ORDER BY event_date, created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(&ev.ID, &ev.OwnerID, &ev.PersonName, &ev.Title, &ev.Description, &ev.Date, &ev.RawDate,
			&ev.Place, &ev.Category, &ev.Latitude, &ev.Longitude, &ev.Geohash, &ev.Source, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// 文档注释：按源顺序读取所有者的人员与家庭链接
// 返回：两份列表均按 position 升序，供树构建使用。
func (s *Store) LoadGenealogy(ctx context.Context, ownerID string) ([]model.Person, []model.FamilyLink, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT position, external_id, given_name, surname, sex,
        birth_date, birth_place, death_date, death_place, burial_place
        FROM fa_persons WHERE owner_id=$1 ORDER BY position`, ownerID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var persons []model.Person
	for rows.Next() {
		var p model.Person
		var sex string
		if err := rows.Scan(&p.Position, &p.ExternalID, &p.GivenName, &p.Surname, &sex,
			&p.Birth.Date, &p.Birth.Place, &p.Death.Date, &p.Death.Place, &p.BurialPlace); err != nil {
			return nil, nil, err
		}
		p.Sex = model.Sex(sex)
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	lrows, err := s.db.QueryContext(ctx, `SELECT position, external_family_id, husband_id, wife_id, child_ids
        FROM fa_family_links WHERE owner_id=$1 ORDER BY position`, ownerID)
	if err != nil {
		return nil, nil, err
	}
	defer lrows.Close()
	var links []model.FamilyLink
	for lrows.Next() {
		var l model.FamilyLink
		if err := lrows.Scan(&l.Position, &l.ExternalFamilyID, &l.HusbandID, &l.WifeID, pq.Array(&l.ChildIDs)); err != nil {
			return nil, nil, err
		}
		links = append(links, l)
	}
	if err := lrows.Err(); err != nil {
		return nil, nil, err
	}
	logger.L().Debug("db_genealogy_loaded", "owner", ownerID, "persons", len(persons), "links", len(links))
	return persons, links, nil
}

// LoadMembers: 读取在线维护的成员，按录入顺序
func (s *Store) LoadMembers(ctx context.Context, ownerID string) ([]model.Member, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, sex, birth_date, death_date
        FROM fa_members WHERE owner_id=$1 ORDER BY seq`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Member
	for rows.Next() {
		var m model.Member
		var sex string
		if err := rows.Scan(&m.ID, &m.Name, &sex, &m.BirthDate, &m.DeathDate); err != nil {
			return nil, err
		}
		m.Sex = model.Sex(sex)
		out = append(out, m)
	}
	return out, rows.Err()
}

// LoadRelationships: 读取成员间的关系边，按声明顺序
func (s *Store) LoadRelationships(ctx context.Context, ownerID string) ([]model.Relationship, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT from_id, to_id, rel_type
        FROM fa_relationships WHERE owner_id=$1 ORDER BY seq`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Relationship
	for rows.Next() {
		var r model.Relationship
		var typ string
		if err := rows.Scan(&r.FromID, &r.ToID, &typ); err != nil {
			return nil, err
		}
		r.Type = model.RelationType(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}

// AddMember: 追加一位在线成员；同 id 重复写入时更新资料但保留原录入顺序
func (s *Store) AddMember(ctx context.Context, ownerID string, m model.Member) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO fa_members(owner_id, id, name, sex, birth_date, death_date)
        VALUES($1,$2,$3,$4,$5,$6)
        ON CONFLICT (owner_id, id) DO UPDATE SET name=EXCLUDED.name, sex=EXCLUDED.sex,
            birth_date=EXCLUDED.birth_date, death_date=EXCLUDED.death_date`,
		ownerID, m.ID, m.Name, string(m.Sex), m.BirthDate, m.DeathDate)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// AddRelationship: 追加一条关系边
func (s *Store) AddRelationship(ctx context.Context, ownerID string, r model.Relationship) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO fa_relationships(owner_id, from_id, to_id, rel_type) VALUES($1,$2,$3,$4)`,
		ownerID, r.FromID, r.ToID, string(r.Type))
	if err != nil {
		return fmt.Errorf("add relationship: %w", err)
	}
	return nil
}
