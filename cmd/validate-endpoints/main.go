package main

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/marcelsud/message-relay/endpoints"
	"github.com/marcelsud/message-relay/webhook/action"
)

/* validate-endpoints - Standalone CLI tool to validate endpoints.yaml
 * Usage: go run cmd/validate-endpoints/main.go [endpoints.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	endpointsFile := "endpoints.yaml"
	if len(os.Args) > 1 {
		endpointsFile = os.Args[1]
	}

	fmt.Printf("Validating endpoints file: %s\n", endpointsFile)
	fmt.Println(strings.Repeat("-", 50))

	loader := endpoints.NewLoader(action.ContactUpsertName, action.MediaDecryptName, action.RelayForwardName)
	if err := loader.Load(endpointsFile); err != nil {
		fmt.Fprintf(os.Stderr, "VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	accounts := loader.Accounts()
	loaded := loader.List()
	fmt.Printf("VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d account(s) and %d webhook(s):\n", len(accounts), len(loaded))

	for i, e := range loaded {
		fmt.Printf("\n%d. Webhook: %s\n", i+1, e.WebhookID)
		fmt.Printf("   Account:   %s\n", e.AccountID)
		fmt.Printf("   Active:    %t\n", e.Active)
		fmt.Printf("   Signed:    %t\n", e.Secret != "")
		if len(e.FieldMapping) > 0 {
			fmt.Printf("   Mapping:\n")
			for _, field := range slices.Sorted(maps.Keys(e.FieldMapping)) {
				fmt.Printf("     %-8s <- %s\n", field, e.FieldMapping[field])
			}
		} else {
			fmt.Printf("   Mapping:   heuristic\n")
		}
		fmt.Printf("   Actions:   %s\n", strings.Join(e.Actions, ", "))
	}

	fmt.Printf("\nAll endpoints are valid!\n")
}
