package app

import (
	"github.com/Spirits-Studio/zakeke-lite/internal/data/repos"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

type Repos struct {
	// OrderHistory is nil without a database.
	OrderHistory repos.OrderHistoryRepo
}

func wireRepos(clients Clients, log *logger.Logger) Repos {
	if clients.Postgres == nil {
		return Repos{}
	}
	log.Info("Wiring repos...")
	return Repos{
		OrderHistory: repos.NewOrderHistoryRepo(clients.Postgres.DB(), log),
	}
}
