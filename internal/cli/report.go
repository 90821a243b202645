package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/project-sy789/coffeeorder-sub000/internal/database"
	"github.com/project-sy789/coffeeorder-sub000/internal/logger"
	"github.com/project-sy789/coffeeorder-sub000/internal/migrations"
	"github.com/project-sy789/coffeeorder-sub000/internal/pos"
	"github.com/project-sy789/coffeeorder-sub000/internal/realtime"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
	"github.com/project-sy789/coffeeorder-sub000/internal/utils"
)

var reportFrom, reportTo string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the sales report",
	Long:  "Prints completed-order totals and the best selling products between two shop-local dates (default: today)",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg, err := loadConfig(true)
		exitOnError(err)
		loc, err := cfg.Location()
		exitOnError(err)

		db, err := connectDB(ctx, cfg)
		exitOnError(err)
		defer database.Close(db)
		if cfg.IsMemory() {
			_, err = migrations.Apply(ctx, db, cfg.MigrationTable)
			exitOnError(err)
		}

		lg := logger.Discard()
		hub := realtime.NewHub(lg, 1)
		defer hub.Close()
		svc := pos.NewService(store.New(db), hub, loc, lg)

		rep, err := svc.SalesReport(ctx, reportFrom, reportTo)
		exitOnError(err)
		exitOnError(printReport(os.Stdout, rep))
	},
}

func printReport(w io.Writer, rep *pos.SalesReport) error {
	if _, err := fmt.Fprintf(w, "Sales %s to %s\n", rep.From, rep.To); err != nil {
		return err
	}
	totals := tablewriter.NewWriter(w)
	totals.Header("Orders", "Subtotal", "Discounts", "Revenue", "Points earned")
	t := rep.Totals
	if err := totals.Append(
		strconv.FormatInt(t.Orders, 10),
		utils.FormatMoney(t.Subtotal),
		utils.FormatMoney(t.Discounts),
		utils.FormatMoney(t.Revenue),
		strconv.FormatInt(t.PointsEarned, 10),
	); err != nil {
		return err
	}
	if err := totals.Render(); err != nil {
		return err
	}

	if len(rep.TopProducts) == 0 {
		_, err := fmt.Fprintln(w, "No products sold")
		return err
	}
	top := tablewriter.NewWriter(w)
	top.Header("#", "Product", "Qty", "Revenue")
	for i, p := range rep.TopProducts {
		if err := top.Append(strconv.Itoa(i+1), p.ProductName, strconv.FormatInt(p.Quantity, 10), utils.FormatMoney(p.Revenue)); err != nil {
			return err
		}
	}
	return top.Render()
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "first day, YYYY-MM-DD")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "last day, YYYY-MM-DD (default: --from)")
	rootCmd.AddCommand(reportCmd)
}
