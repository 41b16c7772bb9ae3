package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-vault-circle/internal/config"
	"github.com/MKhiriev/go-vault-circle/internal/handler"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/notify"
	"github.com/MKhiriev/go-vault-circle/internal/server"
	"github.com/MKhiriev/go-vault-circle/internal/service"
	"github.com/MKhiriev/go-vault-circle/internal/store"
	"github.com/MKhiriev/go-vault-circle/internal/tree"
	"github.com/MKhiriev/go-vault-circle/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("vault-circle-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	forest, err := loadForest(ctx, storages.CategoryRepository)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading category forest")
	}

	hub := notify.NewHub(log)
	services := service.NewServices(storages, forest, hub, *cfg, log)

	handlers, err := handler.NewHandlers(services, hub, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	workers.NewWorkers(services, cfg.Workers, log).Run()

	srv.RunServer()
}

// loadForest rebuilds the in-memory category forest from the persisted
// category rows.
func loadForest(ctx context.Context, categories store.CategoryRepository) (*tree.Tree, error) {
	rows, err := categories.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make([]tree.Node, 0, len(rows))
	for _, category := range rows {
		nodes = append(nodes, tree.Node{
			ID:            category.CategoryID,
			Name:          category.Name,
			ParentID:      category.ParentID,
			CreatorID:     category.CreatorID,
			ResponsibleID: category.ResponsibleID,
			Groups:        category.GroupIDs,
			CreatedAt:     category.CreatedAt,
		})
	}

	forest := tree.NewTree()
	forest.Load(nodes)

	return forest, nil
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
