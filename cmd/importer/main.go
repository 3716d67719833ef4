// importer 將 JSON 食譜目錄匯入資料庫，已存在的食譜名稱會略過。
//
//	importer -file recipes.json
//	importer -url https://example.com/recipes.json
//	importer -seed
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"ecocook/internal/core/catalog"
	"ecocook/internal/core/store"
	"ecocook/internal/infrastructure/config"
	"ecocook/internal/infrastructure/database"
	"ecocook/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "path to a recipe catalog JSON file")
	url := flag.String("url", "", "URL of a recipe catalog JSON document")
	seed := flag.Bool("seed", false, "import the built-in recipes when the catalog is empty")
	flag.Parse()

	if *file == "" && *url == "" && !*seed {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	db, err := database.Open(&cfg.Database, false)
	if err != nil {
		common.LogFatal("Failed to open database", zap.Error(err))
	}
	defer database.Close(db)

	// 匯入後的快取由 API 服務依 TTL 自行更新
	cat := catalog.New(store.New(db), nil, catalog.NewFetcher(cfg.Catalog.ImportTimeout))
	ctx := context.Background()

	var result *catalog.ImportResult
	switch {
	case *seed:
		result, err = cat.Seed(ctx)
	case *file != "":
		result, err = cat.ImportFile(ctx, *file)
	default:
		result, err = cat.ImportURL(ctx, *url)
	}
	if err != nil {
		common.LogError("Import failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("imported %d recipes\n", result.Imported)
	if len(result.Skipped) > 0 {
		fmt.Printf("skipped: %s\n", strings.Join(result.Skipped, ", "))
	}
}
