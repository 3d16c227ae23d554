package main

import (
	"io"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/user/filmlog/internal/app"
	"github.com/user/filmlog/internal/config"
)

// commandContext 子命令共享的配置与组装逻辑
type commandContext struct {
	envFile   string
	archive   string
	feedURL   string
	policy    string
	verbose   bool
	noPosters bool
}

func (c *commandContext) build() (*app.App, error) {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil {
			return nil, err
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := config.Load()
	if c.archive != "" {
		cfg.ArchivePath = c.archive
	}
	if c.feedURL != "" {
		cfg.FeedURL = c.feedURL
	}
	if c.policy != "" {
		cfg.MergePolicy = c.policy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !c.verbose {
		log.SetOutput(io.Discard)
	}

	var opts []app.Option
	if c.noPosters {
		opts = append(opts, app.WithoutPosters())
	}
	return app.New(cfg, opts...), nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "filmctl",
		Short:         "观影记录命令行工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.envFile, "env-file", "", ".env 文件路径")
	flags.StringVar(&ctx.archive, "archive", "", "归档 CSV 路径（覆盖 ARCHIVE_PATH）")
	flags.StringVar(&ctx.feedURL, "feed", "", "订阅源地址（覆盖 FEED_URL）")
	flags.StringVar(&ctx.policy, "policy", "", "合并策略 field 或 score（覆盖 MERGE_POLICY）")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "输出运行日志")
	flags.BoolVar(&ctx.noPosters, "no-posters", false, "不抓取海报")

	rootCmd.AddCommand(newFilmsCommand(ctx))
	rootCmd.AddCommand(newLatestCommand(ctx))

	return rootCmd
}
