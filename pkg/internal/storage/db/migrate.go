package db

import (
	"fmt"

	"github.com/yimu/filedepot/pkg/internal/model"
)

// Migrate 建表与索引：files、folders 以及 folders_closure 闭包表.
func (c *Client) Migrate() error {
	if err := c.AutoMigrate(
		&model.Folder{},
		&model.File{},
		&model.FolderClosure{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}
