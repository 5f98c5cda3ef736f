// Package report prints an estimate for people.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/estimator"
)

// Write prints the yearly usage estimate. verbose adds the month by month
// comparison of reference and fitted shares and the fit diagnostics.
func Write(w io.Writer, est *estimator.Estimate, verbose bool) error {
	fmt.Fprintf(w, "Reference data: %s\n", est.Dataset)

	if verbose {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Month\tOriginal Share\tFitted Share\t")
		for month, fitted := range est.FittedShares {
			fmt.Fprintf(tw, "%d\t%.6f\t%.6f\t\n", month+1, est.Dataset.Shares[month], fitted)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nFit status: %s after %d iterations\n", est.Fit.Status, est.Fit.Iterations)
		fmt.Fprintf(w, "Remaining squared residuals: %g\n", est.Fit.SquaredResiduals)
		fmt.Fprintf(w, "Yearly integral of fitted function: %.6f\n\n", est.YearlyIntegral)

		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Interval\tStart day\tEnd day\tUsage\tYearly usage guess\t")
		for i, interval := range est.Scaling.Intervals {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%.1f\t%.0f\t\n", i, interval.StartDay, interval.EndDay, interval.UsageDelta, interval.Factor)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	_, err := fmt.Fprintf(w, "Fitted average gas usage (unit depends on input data): %.0f ± %.0f\n",
		est.Scaling.Mean, est.Scaling.StdDev)
	return err
}
