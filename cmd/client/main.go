package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tyrowin/gochat/internal/client"
)

var (
	addr     string
	username string
)

var rootCmd = &cobra.Command{
	Use:          "gochat-client",
	Short:        "Join a GoChat relay from the terminal",
	SilenceUsage: true,
	RunE: func(_ *cobra.Command, _ []string) error {
		display := client.NewDisplay(os.Stdout)
		in := bufio.NewReader(os.Stdin)

		name := username
		if name == "" {
			var err error
			name, err = promptUsername(in, display)
			if err != nil {
				return err
			}
		}

		c, err := client.Dial(addr, name, display)
		if err != nil {
			return err
		}
		return c.Run(in)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&addr, "addr", "a", "localhost:8080", "relay address")
	rootCmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
}

// promptUsername asks until a valid name is entered.
func promptUsername(reader *bufio.Reader, display *client.Display) (string, error) {
	for {
		fmt.Printf("Enter username (alphanumeric, max %d chars): ", client.MaxUsernameLen)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		name := strings.TrimSpace(line)
		if err := client.ValidateUsername(name); err != nil {
			display.Error("Invalid username. Try again.")
			continue
		}
		return name, nil
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
