package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"carehub/contracts"
	"carehub/pkg/contract"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/schema"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "contractctl",
		Short:        "Inspect the carehub API contract",
		SilenceUsage: true,
	}
	root.AddCommand(newRoutesCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newDescribeCmd())
	root.AddCommand(newValidateCmd())
	return root
}

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List every operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tree, err := contracts.New()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range tree.Entries() {
				op := e.Operation
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", op.Method(), op.Path(), e.ID(), op.Pagination())
			}
			return w.Flush()
		},
	}
}

func newSchemaCmd() *cobra.Command {
	var variant, format string
	cmd := &cobra.Command{
		Use:   "schema <domain>.<Entity>",
		Short: "Export an entity schema as JSON Schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := contracts.LookupEntity(args[0])
			if err != nil {
				return err
			}
			var s *schema.Object
			switch variant {
			case "entity":
				s = entity
			case "create":
				s = entity.CreateInput()
			case "update":
				s = entity.UpdateInput()
			default:
				return fmt.Errorf("unknown variant %q (want entity, create or update)", variant)
			}
			return write(cmd.OutOrStdout(), format, s.JSONSchema())
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "entity", "entity, create or update")
	cmd.Flags().StringVar(&format, "format", "json", "json or yaml")
	return cmd
}

func newDescribeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "describe <domain>.<name>",
		Short: "Print an operation with its request and response schemas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := contracts.New()
			if err != nil {
				return err
			}
			if _, err := tree.LookupID(args[0]); err != nil {
				return err
			}
			for _, e := range tree.Entries() {
				if e.ID() == args[0] {
					return write(cmd.OutOrStdout(), format, contract.Describe(e))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json or yaml")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var (
		opID   string
		status int
	)
	cmd := &cobra.Command{
		Use:   "validate --op <domain>.<name> --status <code> <file|->",
		Short: "Check a recorded response body against its declared envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := contracts.New()
			if err != nil {
				return err
			}
			op, err := tree.LookupID(opID)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			env, err := op.ValidateResponse(status, raw)
			if err != nil {
				for _, is := range dErrors.IssuesOf(err) {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", is.Path, is.Message)
				}
				return err
			}
			branch := "success"
			if !env.Success {
				branch = "error " + env.Error.Code
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s %s (%s)\n", opID, strconv.Itoa(status), branch)
			return nil
		},
	}
	cmd.Flags().StringVar(&opID, "op", "", "operation id, e.g. resident.get")
	cmd.Flags().IntVar(&status, "status", 200, "HTTP status the body was recorded with")
	_ = cmd.MarkFlagRequired("op")
	return cmd
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return raw, nil
}

func write(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Round trip through JSON so struct values use their json field names.
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
