package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/ByLCY/pricetag/config"
	"github.com/ByLCY/pricetag/dsl"
	"github.com/ByLCY/pricetag/layout"
	"github.com/ByLCY/pricetag/logger"
	"github.com/ByLCY/pricetag/product"
	canvasrenderer "github.com/ByLCY/pricetag/renderer/canvas"
	"github.com/ByLCY/pricetag/server"
	"github.com/ByLCY/pricetag/session"
	"github.com/ByLCY/pricetag/storage"
	"github.com/ByLCY/pricetag/ticketsheet"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config.toml）")
	productsPath := flag.String("products", "", "商品 JSON 文件，覆盖配置中的 data.products_file")
	output := flag.String("out", "", "PDF 输出路径；为空时按时间戳命名并写入配置的存储")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	serve := flag.Bool("serve", false, "启动 HTTP 服务而不是直接生成")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *productsPath != "" {
		cfg.Data.ProductsFile = *productsPath
	}
	if *debug != "" {
		cfg.Render.DebugJSON = *debug
	}

	zl, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serve {
		err = runServer(ctx, cfg, zl)
	} else {
		err = runOnce(ctx, cfg, *output, zl)
	}
	if err != nil {
		zl.Error("pricetag failed", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
}

// runOnce 为目录中的全部商品生成一份票签 PDF。
func runOnce(ctx context.Context, cfg *config.Config, output string, zl *zap.Logger) error {
	var (
		store storage.Store
		name  string
		err   error
	)
	if output != "" {
		store, err = storage.NewFileSystemStore(filepath.Dir(output), zl)
		name = filepath.Base(output)
	} else {
		store, err = newStore(ctx, cfg, zl)
	}
	if err != nil {
		return err
	}
	gen, err := newGenerator(cfg, store, zl)
	if err != nil {
		return err
	}

	products, err := product.NewCatalog(cfg.Data.ProductsFile).List()
	if err != nil {
		return fmt.Errorf("读取商品失败: %w", err)
	}
	res, err := gen.Generate(ctx, products, name)
	if err != nil {
		return err
	}
	fmt.Printf("已生成 PDF：%s（%d 张票签，%d 页）\n", res.Location, res.Tickets, res.Pages)
	return nil
}

func runServer(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	store, err := newStore(ctx, cfg, zl)
	if err != nil {
		return err
	}
	gen, err := newGenerator(cfg, store, zl)
	if err != nil {
		return err
	}
	if _, err := gen.Grid(); err != nil {
		return err
	}
	sessions, err := newSessionStore(ctx, cfg, zl)
	if err != nil {
		return err
	}

	handler := server.NewTicketHandler(product.NewCatalog(cfg.Data.ProductsFile), sessions, gen, store)
	srv := server.New(server.Config{
		Port:       cfg.App.Port,
		BasePath:   cfg.App.BasePath,
		CookieName: cfg.Session.CookieName,
		SessionTTL: cfg.Session.TTL,
		Production: cfg.App.Env == "production",
	}, handler, zl)
	return srv.Run(ctx)
}

func newGenerator(cfg *config.Config, store storage.Store, zl *zap.Logger) (*ticketsheet.Generator, error) {
	geo, style, err := loadSheet(cfg.Sheet.Path)
	if err != nil {
		return nil, err
	}
	if cfg.Render.NameOverflow != "" {
		style.NameOverflow = cfg.Render.NameOverflow
	}
	if cfg.Render.PriceCenter != "" {
		style.PriceCenter = cfg.Render.PriceCenter
	}
	return ticketsheet.New(ticketsheet.Options{
		Backend:   canvasrenderer.NewRenderer(),
		Store:     store,
		Geometry:  geo,
		Style:     style,
		LogoPath:  cfg.Assets.LogoPath,
		DebugJSON: cfg.Render.DebugJSON,
		Logger:    zl.Named("generator"),
	}), nil
}

// loadSheet 解析 sheet 描述文件；未配置时使用内置的 A4 横向模板。
func loadSheet(path string) (layout.Geometry, layout.TicketStyle, error) {
	var (
		sheet *dsl.Sheet
		err   error
	)
	if path == "" {
		sheet, err = dsl.ParseString(dsl.DefaultSheet)
	} else {
		var file *os.File
		file, err = os.Open(path)
		if err != nil {
			return layout.Geometry{}, layout.TicketStyle{}, fmt.Errorf("无法打开 sheet 文件 %s: %w", path, err)
		}
		defer file.Close()
		sheet, err = dsl.Parse(file)
	}
	if err != nil {
		return layout.Geometry{}, layout.TicketStyle{}, fmt.Errorf("解析 sheet 失败: %w", err)
	}
	return layout.FromSheet(sheet)
}

func newStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (storage.Store, error) {
	if cfg.Output.Backend == "s3" {
		s3cfg := cfg.Output.S3
		return storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:     s3cfg.Endpoint,
			Region:       s3cfg.Region,
			Bucket:       s3cfg.Bucket,
			Prefix:       s3cfg.Prefix,
			AccessKey:    s3cfg.AccessKey,
			SecretKey:    s3cfg.SecretKey,
			UseSSL:       s3cfg.UseSSL,
			UsePathStyle: s3cfg.UsePathStyle,
		}, zl.Named("storage"))
	}
	return storage.NewFileSystemStore(cfg.Output.Dir, zl.Named("storage"))
}

func newSessionStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (session.Store, error) {
	if cfg.Session.Backend == "redis" {
		return session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
			TTL:      cfg.Session.TTL,
		}, zl.Named("session"))
	}
	return session.NewMemoryStore(), nil
}
