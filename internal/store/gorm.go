package store

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Node is one stored leaf.
type Node struct {
	Path  string         `gorm:"primaryKey;type:text"`
	Value datatypes.JSON `gorm:"type:jsonb;not null"`
}

func (Node) TableName() string {
	return "store_nodes"
}

// GormStore persists leaves in a postgres table. Multi-key updates run in
// a single transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, path string, dest interface{}) (bool, error) {
	p, err := cleanPath(path)
	if err != nil {
		return false, err
	}

	var nodes []Node
	if err := subtreeScope(s.db.WithContext(ctx), p).Find(&nodes).Error; err != nil {
		return false, err
	}

	leaves := make(map[string]json.RawMessage, len(nodes))
	for _, n := range nodes {
		leaves[n.Path] = json.RawMessage(n.Value)
	}
	raw, found, err := expand(p, leaves)
	if err != nil || !found {
		return false, err
	}
	return true, decodeInto(raw, dest)
}

func (s *GormStore) Set(ctx context.Context, path string, value interface{}) error {
	p, err := cleanPath(path)
	if err != nil {
		return err
	}
	leaves, err := flatten(p, value)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return writeTx(tx, p, leaves)
	})
}

func (s *GormStore) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	writes, err := planUpdate(path, fields)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for target, leaves := range writes {
			if err := writeTx(tx, target, leaves); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) Remove(ctx context.Context, path string) error {
	return s.Set(ctx, path, nil)
}

func writeTx(tx *gorm.DB, path string, leaves map[string]json.RawMessage) error {
	if err := subtreeScope(tx, path).Delete(&Node{}).Error; err != nil {
		return err
	}
	if path != "" {
		if parents := ancestors(path); len(parents) > 0 {
			if err := tx.Where("path IN ?", parents).Delete(&Node{}).Error; err != nil {
				return err
			}
		}
	}
	if len(leaves) == 0 {
		return nil
	}

	nodes := make([]Node, 0, len(leaves))
	for key, raw := range leaves {
		nodes = append(nodes, Node{Path: key, Value: datatypes.JSON(raw)})
	}
	return tx.CreateInBatches(nodes, 200).Error
}

func subtreeScope(db *gorm.DB, path string) *gorm.DB {
	if path == "" {
		return db.Where("1 = 1")
	}
	return db.Where("path = ? OR path LIKE ? ESCAPE '\\'", path, escapeLike(path)+"/%")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
