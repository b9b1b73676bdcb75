package main

import (
	"aetherum/cmd"
	"aetherum/internal/app"
	"aetherum/internal/domain"
	"aetherum/internal/logger"
	"aetherum/internal/util"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aetherum",
	Short: "Quote collateralized crypto loans from the command line",
}

var (
	portfolioName string
	termMonths    int
)

var loanCmd = &cobra.Command{
	Use:   "loan",
	Short: "Calculate loan terms for one of the sample portfolios",
	RunE: func(c *cobra.Command, args []string) error {
		handler, err := cmd.InitializeDependencies()
		if err != nil {
			return err
		}

		sample, ok := domain.FindSamplePortfolio(portfolioName)
		if !ok {
			return fmt.Errorf("unknown portfolio %q, options are: %s", portfolioName, portfolioNames())
		}

		profile := domain.NewProfile()
		ctx := context.WithValue(context.Background(), logger.ContextKey, logger.New())
		ctx = context.WithValue(ctx, domain.ContextProfileKey, profile)

		response, err := handler.LoanApp.CalculateLoan(ctx, app.CalculateLoanInput{
			Holdings: sample.Holdings,
			Parameters: domain.LoanParameters{
				TermMonths:     termMonths,
				PayoutCurrency: "USD",
				InceptionDate:  time.Now().UTC(),
				Lender:         "Aetherum",
			},
		})
		if err != nil {
			return err
		}
		profile.End()

		util.Pprint(response)
		printSummary(sample, response)
		return nil
	},
}

var marketDataCmd = &cobra.Command{
	Use:   "marketdata",
	Short: "Print the current market snapshot",
	RunE: func(c *cobra.Command, args []string) error {
		handler, err := cmd.InitializeDependencies()
		if err != nil {
			return err
		}

		snapshot, err := handler.MarketDataRepository.GetSnapshot(context.Background())
		if err != nil {
			return err
		}

		util.Pprint(snapshot)
		return nil
	},
}

func printSummary(sample *domain.SamplePortfolio, response *app.CalculateLoanResponse) {
	fmt.Printf("\n%s portfolio ($%s collateral):\n", sample.Name, sample.Holdings.TotalCollateral())
	fmt.Printf("  loan amount:    $%s\n", response.Summary.LoanAmount.Round(2))
	fmt.Printf("  weighted ltv:   %.2f%%\n", response.Summary.WeightedLTV*100)
	fmt.Printf("  interest rate:  %.2f%%\n", response.Summary.WeightedInterestRate*100)
	fmt.Printf("  monthly payment: $%s\n", response.Summary.MonthlyPayment.Round(2))
	if !response.CorrelationAvailable {
		fmt.Println("  (correlation adjustment unavailable for this run)")
	}
}

func portfolioNames() string {
	names := ""
	for i, p := range domain.SamplePortfolios {
		if i > 0 {
			names += ", "
		}
		names += p.Name
	}
	return names
}

func main() {
	loanCmd.Flags().StringVar(&portfolioName, "portfolio", "moderate", "sample portfolio to quote")
	loanCmd.Flags().IntVar(&termMonths, "months", 12, "loan term in months")
	rootCmd.AddCommand(loanCmd)
	rootCmd.AddCommand(marketDataCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
