package main

import (
	"fmt"

	"github.com/nmutua/gradepoint/storage/database"
)

var (
	// mockable
	migrateUpFunc   = database.Migrate
	migrateDownFunc = database.Rollback
)

func (cli *commandLine) migrate(direction string) error {
	switch direction {
	case "up":
		return migrateUpFunc(cli.db)
	case "down":
		return migrateDownFunc(cli.db)
	default:
		return fmt.Errorf("%q: no such migrate direction", direction)
	}
}
