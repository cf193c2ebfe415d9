package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"golang-stock-forecaster/internal/entity"
	"golang-stock-forecaster/internal/forecaster/render"
	"golang-stock-forecaster/internal/forecaster/service"
	"golang-stock-forecaster/pkg/logger"
	"golang-stock-forecaster/pkg/telegram"
	"golang-stock-forecaster/pkg/utils"

	"github.com/spf13/cobra"
)

var (
	forecastSymbol     string
	forecastYears      int
	forecastTail       int
	forecastChart      string
	forecastComponents string
	notify             bool
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "Prints the symbol catalog",
	RunE:  runSymbols,
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecasts one symbol and prints the latest points",
	RunE:  runForecast,
}

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Prints the latest market headlines",
	RunE:  runNews,
}

func init() {
	forecastCmd.Flags().StringVarP(&forecastSymbol, "symbol", "s", "", "Ticker symbol, e.g. AAPL")
	forecastCmd.Flags().IntVarP(&forecastYears, "years", "y", 1, "Forecast horizon in years (1-4)")
	forecastCmd.Flags().IntVar(&forecastTail, "tail", 5, "Number of latest points to print")
	forecastCmd.Flags().StringVar(&forecastChart, "chart", "", "Write the forecast chart PNG to this path")
	forecastCmd.Flags().StringVar(&forecastComponents, "components", "", "Write the components chart PNG to this path")
	forecastCmd.Flags().BoolVar(&notify, "notify", false, "Send the result to Telegram")
	_ = forecastCmd.MarkFlagRequired("symbol")

	newsCmd.Flags().BoolVar(&notify, "notify", false, "Send the headlines to Telegram")
}

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSymbols(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext()
	defer stop()

	a := newApp(configPath)
	defer a.close()

	catalog, err := a.svc.ResolveCatalog(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, s := range catalog.Symbols() {
		fmt.Fprintln(out, s)
	}
	return nil
}

func runForecast(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext()
	defer stop()

	a := newApp(configPath)
	defer a.close()

	run, err := a.svc.Run(ctx, service.RunRequest{Symbol: forecastSymbol, Years: forecastYears})
	if notify {
		a.sendForecast(run)
	}
	if err != nil {
		return fmt.Errorf("forecast %s failed in %s (%s): %w", forecastSymbol, run.FailedIn, run.ErrorKind, err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tOPEN\tHIGH\tLOW\tCLOSE\tVOLUME")
	for _, b := range run.Series.Tail(forecastTail) {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%d\n", utils.FormatDate(b.Date), b.Open, b.High, b.Low, b.Close, b.Volume)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "DATE\tESTIMATE\tLOWER\tUPPER")
	points := run.Forecast
	if forecastTail > 0 && forecastTail < len(points) {
		points = points[len(points)-forecastTail:]
	}
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\n", utils.FormatDate(p.Date), p.Estimate, p.Lower, p.Upper)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if forecastChart != "" {
		if err := writeChart(forecastChart, func() ([]byte, error) { return render.ForecastChart(run.Series, run.Forecast) }); err != nil {
			return err
		}
	}
	if forecastComponents != "" {
		if err := writeChart(forecastComponents, func() ([]byte, error) { return render.ComponentsChart(run.Symbol, run.Forecast) }); err != nil {
			return err
		}
	}
	return nil
}

func runNews(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext()
	defer stop()

	a := newApp(configPath)
	defer a.close()

	headlines := a.svc.LatestNews(ctx)
	out := cmd.OutOrStdout()
	for _, h := range headlines {
		fmt.Fprintf(out, "- %s\n  %s\n", h.Title, h.Link)
	}

	if notify && a.notifier != nil {
		for _, msg := range telegram.FormatHeadlinesForTelegram(headlines) {
			if err := a.notifier.SendMessage(msg); err != nil {
				a.logger.Error("Failed to send headlines to Telegram", logger.ErrorField(err))
				break
			}
		}
	}
	return nil
}

func (a *app) sendForecast(run *entity.PipelineRun) {
	if a.notifier == nil {
		a.logger.Warn("Telegram notifier is not configured, skipping notification")
		return
	}
	if err := a.notifier.SendMessage(telegram.FormatForecastMessage(run)); err != nil {
		a.logger.Error("Failed to send forecast to Telegram", logger.ErrorField(err))
		return
	}
	if run.State != entity.StateForecastReady {
		return
	}
	png, err := render.ForecastChart(run.Series, run.Forecast)
	if err != nil {
		a.logger.Error("Failed to render forecast chart", logger.ErrorField(err))
		return
	}
	if err := a.notifier.SendPhoto(run.Symbol.String()+".png", png, "Forecast "+run.Symbol.String()); err != nil {
		a.logger.Error("Failed to send forecast chart to Telegram", logger.ErrorField(err))
	}
}

func writeChart(path string, build func() ([]byte, error)) error {
	png, err := build()
	if err != nil {
		return err
	}
	return os.WriteFile(path, png, 0o644)
}
