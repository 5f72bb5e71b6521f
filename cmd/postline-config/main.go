package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pevans/postline/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

func run(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	action := args[0]
	switch action {
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	case "list", "get", "set", "unset", "show":
	default:
		fmt.Fprintf(stderr, "Error: unknown command: %s\n\n", action)
		printUsage(stderr)
		return 1
	}

	dsn, err := config.SettingsDSN(getenv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// show reports the effective settings and must not create the store.
	if action == "show" {
		return handleShow(getenv, stdout, stderr)
	}

	store, err := config.NewSettingsStore(dsn)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to open settings store: %v\n", err)
		return 1
	}
	defer store.Close()

	switch action {
	case "list":
		return handleList(store, stdout, stderr)
	case "get":
		return handleGet(store, args[1:], stdout, stderr)
	case "set":
		return handleSet(store, args[1:], stdout, stderr)
	default:
		return handleUnset(store, args[1:], stdout, stderr)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "postline-config - Manage persisted postline settings")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  postline-config <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list               List stored settings")
	fmt.Fprintln(w, "  get <key>          Print a stored setting")
	fmt.Fprintln(w, "  set <key> <value>  Store a setting")
	fmt.Fprintln(w, "  unset <key>        Remove a stored setting")
	fmt.Fprintln(w, "  show               Print the effective settings after every layer")
	fmt.Fprintln(w, "  help               Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keys:")
	for _, key := range config.Keys() {
		fmt.Fprintf(w, "  %-14s (env: %s)\n", key, config.EnvVar(key))
	}
}

func handleList(store *config.SettingsStore, stdout, stderr io.Writer) int {
	values, err := store.All()
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to list settings: %v\n", err)
		return 1
	}

	if len(values) == 0 {
		fmt.Fprintln(stdout, "No settings stored.")
		return 0
	}

	for _, key := range config.Keys() {
		if value, ok := values[key]; ok {
			fmt.Fprintf(stdout, "%s=%s\n", key, value)
		}
	}
	return 0
}

func handleGet(store *config.SettingsStore, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: postline-config get <key>")
		return 1
	}

	value, ok, err := store.Get(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Fprintf(stderr, "Error: %s is not set\n", args[0])
		return 1
	}

	fmt.Fprintln(stdout, value)
	return 0
}

func handleSet(store *config.SettingsStore, args []string, stdout, stderr io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(stderr, "Usage: postline-config set <key> <value>")
		return 1
	}

	if err := store.Set(args[0], args[1]); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "✓ Set %s=%s\n", args[0], args[1])
	return 0
}

func handleUnset(store *config.SettingsStore, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: postline-config unset <key>")
		return 1
	}

	if err := store.Unset(args[0]); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "✓ Unset %s\n", args[0])
	return 0
}

func handleShow(getenv func(string) string, stdout, stderr io.Writer) int {
	settings, err := config.Load(getenv)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	}

	for _, key := range config.Keys() {
		value, err := settings.Get(key)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "%s=%s\n", key, value)
	}
	return 0
}
