package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/filmlog/internal/model"
)

const watchedLayout = "2006-01-02"

func newFilmsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "films",
		Short: "列出合并后的观影记录",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.build()
			if err != nil {
				return err
			}
			if limit == 0 {
				limit = a.Config.DefaultLimit
			}

			films := a.Films.GetAllFilms(cmd.Context(), limit)
			if asJSON {
				return writeJSON(cmd, films)
			}
			if len(films) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "暂无观影记录")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFilms(films))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "最多返回条数（默认 DEFAULT_LIMIT）")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

func newLatestCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "显示订阅源中最近的一条观影",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.build()
			if err != nil {
				return err
			}

			film, ok := a.Films.LatestFilm(cmd.Context())
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "暂无观影记录")
				return nil
			}
			if asJSON {
				return writeJSON(cmd, film)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFilms([]model.Film{film}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

// writeJSON 以缩进 JSON 写到命令输出
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func filmRow(f model.Film) []string {
	watched := "-"
	if f.WatchedAt != nil {
		watched = f.WatchedAt.Format(watchedLayout)
	}
	link := f.Permalink
	if !f.HasPermalink() {
		link = ""
	}
	return []string{watched, f.Title, f.Year, f.Rating, link}
}

func renderFilms(films []model.Film) string {
	rows := make([][]string, 0, len(films))
	for _, f := range films {
		rows = append(rows, filmRow(f))
	}
	return renderTable(
		[]string{"日期", "片名", "年份", "评分", "链接"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}
