package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"ehr-analysis-service/internal/domain/dtos"
	"ehr-analysis-service/internal/domain/entities"
	"ehr-analysis-service/internal/services"

	"github.com/spf13/cobra"
)

func newAgeCommand(flags *globalFlags) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "age PATIENT_ID",
		Short: "Print a patient's age in whole years",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer rt.close()

			var age int
			if asOf == "" {
				age, err = rt.queries.AgeInYears(args[0])
			} else {
				at, perr := entities.ParseTimestamp("as-of", asOf)
				if perr != nil {
					return perr
				}
				age, err = rt.queries.AgeAt(args[0], at)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), age)
			return err
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", `reference moment "YYYY-MM-DD HH:MM:SS" instead of now`)
	return cmd
}

func newSickCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sick PATIENT_ID LAB_NAME OPERATOR THRESHOLD",
		Short: `Print whether any result of a lab was ">" or "<" a threshold`,
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("threshold %q is not a number: %w", args[3], err)
			}

			rt, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer rt.close()

			sick, err := rt.queries.IsSick(args[0], args[1], services.Operator(args[2]), threshold)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sick)
			return err
		},
	}
}

func newEarliestLabAgeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "earliest-lab-age PATIENT_ID",
		Short: "Print a patient's age at their first recorded lab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer rt.close()

			age, err := rt.queries.EarliestLabAge(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), age)
			return err
		},
	}
}

func newBatchCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Evaluate JSON-lines queries from stdin and write one JSON result per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			requests, err := readRequests(cmd.InOrStdin())
			if err != nil {
				return err
			}

			rt, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer rt.close()

			batch := services.NewBatchQueryService(rt.queries, rt.logger, rt.settings.Workers)
			results, err := batch.Evaluate(cmd.Context(), requests)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, res := range results {
				if err := enc.Encode(res); err != nil {
					return fmt.Errorf("could not write result %s: %w", res.ID, err)
				}
			}
			return nil
		},
	}
}

func readRequests(r io.Reader) ([]dtos.QueryRequest, error) {
	var requests []dtos.QueryRequest
	dec := json.NewDecoder(r)
	for {
		var req dtos.QueryRequest
		err := dec.Decode(&req)
		if errors.Is(err, io.EOF) {
			return requests, nil
		}
		if err != nil {
			return nil, fmt.Errorf("could not decode query %d: %w", len(requests)+1, err)
		}
		requests = append(requests, req)
	}
}
