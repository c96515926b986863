// kioskctl 运维命令行:目录导入、CSV导入、聚合刷新、事件订阅
//
//	kioskctl [-config path] <command> [flags]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
)

const usage = `usage: kioskctl [-config path] <command> [flags]

commands:
  refresh-collection-counts   重建系列收藏数量聚合表
  import-sets                 从Scryfall拉取全部系列
  import-cards [-file path]   导入Scryfall bulk JSON(未指定文件时下载bulk数据)
  import-csv -bucket b -file path
                              导入库存CSV(collection | kiosk)
  tail-events [-keys k1,k2]   订阅并打印库存事件
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		logger.L().Error().Err(err).Msg("命令执行失败")
		os.Exit(1)
	}
}

// run 解析参数并执行子命令
// 参数校验在连接数据库之前完成
func run(ctx context.Context, args []string, stderr io.Writer) error {
	global := flag.NewFlagSet("kioskctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "配置文件路径(默认config/config.yaml)")
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := global.Parse(args); err != nil {
		return errUsage
	}

	rest := global.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	cmd, err := parseCommand(rest[0], rest[1:], stderr)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	output, closeLog, err := logger.OpenOutput(cfg.Log.Output)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.EnableCaller,
		Output: output,
	})

	return cmd(ctx, cfg)
}

type command func(ctx context.Context, cfg *config.Config) error

func parseCommand(name string, args []string, stderr io.Writer) (command, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	switch name {
	case "refresh-collection-counts":
		if err := fs.Parse(args); err != nil {
			return nil, errUsage
		}
		return refreshCounts, nil

	case "import-sets":
		if err := fs.Parse(args); err != nil {
			return nil, errUsage
		}
		return importSets, nil

	case "import-cards":
		file := fs.String("file", "", "Scryfall bulk JSON文件")
		bulkType := fs.String("bulk-type", "", "bulk数据类型(默认取scryfall.bulk_type)")
		if err := fs.Parse(args); err != nil {
			return nil, errUsage
		}
		return func(ctx context.Context, cfg *config.Config) error {
			return importCards(ctx, cfg, *file, *bulkType)
		}, nil

	case "import-csv":
		bucket := fs.String("bucket", "", "collection | kiosk")
		file := fs.String("file", "", "CSV文件")
		if err := fs.Parse(args); err != nil {
			return nil, errUsage
		}
		if *bucket == "" || *file == "" {
			fmt.Fprintln(stderr, "import-csv需要-bucket和-file")
			return nil, errUsage
		}
		return func(ctx context.Context, cfg *config.Config) error {
			return importCSV(ctx, cfg, *bucket, *file)
		}, nil

	case "tail-events":
		keys := fs.String("keys", "#", "routing key,逗号分隔,支持#和*")
		if err := fs.Parse(args); err != nil {
			return nil, errUsage
		}
		return func(ctx context.Context, cfg *config.Config) error {
			return tailEvents(ctx, cfg, splitKeys(*keys))
		}, nil
	}

	fmt.Fprintf(stderr, "unknown command %q\n\n%s", name, usage)
	return nil, errUsage
}

func splitKeys(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
