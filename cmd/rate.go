package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/geowerk/plzatlas/internal/ledger"
)

var rateCmd = &cobra.Command{
	Use:   "rate <pincode> <rating> [review]",
	Short: "Submit a rating and print the pincode's summary",
	Long:  "Submits one rating (1-5) with an optional review, then prints the accumulated summary. The ledger is volatile; this command demonstrates it within one process.",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		plz, err := strconv.Atoi(args[0])
		if err != nil {
			return eris.Wrapf(err, "parse pincode %q", args[0])
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return eris.Wrapf(err, "parse rating %q", args[1])
		}
		review := ""
		if len(args) == 3 {
			review = args[2]
		}

		l := ledger.New()
		sub, err := l.Submit(plz, rating, review)
		if err != nil {
			return err
		}
		fmt.Printf("accepted %s\n", sub.ID)

		s := l.Summary(plz)
		fmt.Printf("Average Rating: %.2f Stars (%d ratings)\n", s.Mean, s.Count)
		for _, r := range s.Reviews {
			fmt.Println(r)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rateCmd)
}
