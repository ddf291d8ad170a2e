package repos

import (
	"gorm.io/gorm"

	"github.com/Spirits-Studio/zakeke-lite/internal/data/repos/orders"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

type OrderHistoryRepo = orders.HistoryRepo

func NewOrderHistoryRepo(db *gorm.DB, baseLog *logger.Logger) OrderHistoryRepo {
	return orders.NewHistoryRepo(db, baseLog)
}
