package database

import (
	"go-warehouse-inventory/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
var Models = []interface{}{
	&model.Privilege{},
	&model.Role{},
	&model.User{},
	&model.Category{},
	&model.Supplier{},
	&model.Product{},
	&model.Inventory{},
	&model.Order{},
	&model.OrderItem{},
	&model.StockIn{},
	&model.StockOut{},
}

func Migrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(Models...), "auto migrate")
}
