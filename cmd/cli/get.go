package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/bolsillo-claro/cli/internal/navigation"
	"github.com/bolsillo-claro/cli/internal/resources"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <endpoint>",
	Short: "Fetch any API resource as JSON",
	Long: fmt.Sprintf(`Fetch an API resource with the current session and print the JSON body.

The endpoint is either a path relative to the API base or one of:
  %s

Example:
  bolsillo get expenses --query month=2025-03`, strings.Join(resources.EndpointNames(), ", ")),
	Args:      cobra.ExactArgs(1),
	ValidArgs: resources.EndpointNames(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireSession(navigation.Route(resources.ResolveEndpoint(args[0])))(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		params, _ := cmd.Flags().GetStringToString("query")
		noCache, _ := cmd.Flags().GetBool("no-cache")

		query := url.Values{}
		for key, value := range params {
			query.Set(key, value)
		}

		res, err := resources.Fetch(cmd.Context(), app.client, args[0], query, noCache)
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"status":  res.StatusCode,
			"cached":  res.Cached,
			"retried": res.Retried,
		}).Debugln("Fetched resource")

		var out bytes.Buffer
		if err := json.Indent(&out, res.Body, "", "  "); err != nil {
			// Not JSON, print it as it came
			fmt.Println(string(res.Body))
			return nil
		}

		fmt.Println(out.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringToString("query", nil, "Query parameters as key=value")
	getCmd.Flags().Bool("no-cache", false, "Bypass the response cache")
}
