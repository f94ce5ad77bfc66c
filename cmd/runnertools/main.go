// Command runnertools inspects the runner tool family and drives its
// collaborators: validate argument maps against descriptors, render
// payloads, run scripts locally, and manage remote sandbox sessions.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	runnertools "github.com/sandboxkit/runnertools-go"
	"github.com/sandboxkit/runnertools-go/csbclient"
	"github.com/sandboxkit/runnertools-go/internal/sandboxstore"
	"github.com/sandboxkit/runnertools-go/localrunner"
	"github.com/sandboxkit/runnertools-go/memregistry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "runnertools",
		Short:         "Inspect and exercise the sandboxed script-runner tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newListCmd(),
		newShowCmd(),
		newValidateCmd(),
		newRenderCmd(),
		newRunCmd(),
		newSandboxCmd(),
	)
	return root
}

func newToolSet() (*runnertools.Set, error) {
	return runnertools.New(runnertools.WithLogger(slog.Default()))
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tool descriptors and their registration namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := newToolSet()
			if err != nil {
				return err
			}

			// Round-trip through a registry so listing exercises the same
			// path a host would, but print in declaration order.
			reg := memregistry.New()
			if err := set.RegisterAll(cmd.Context(), reg); err != nil {
				return err
			}

			fmt.Printf("Namespace: %s\n\n", set.Namespace())
			for _, t := range set.Tools() {
				fmt.Printf("%-26s %-18s args=%d\n", t.Name, t.Image, len(t.Args))
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <tool>",
		Short: "Show one descriptor's schema, environment, and secrets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := newToolSet()
			if err != nil {
				return err
			}
			t, err := set.Tool(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Name:        %s\n", t.Name)
			fmt.Printf("Description: %s\n", t.Description)
			fmt.Printf("Image:       %s\n", t.Image)
			if len(t.Secrets) > 0 {
				fmt.Printf("Secrets:     %s\n", strings.Join(t.Secrets, ", "))
			}
			fmt.Println("Arguments:")
			for _, a := range t.Args {
				flags := "optional"
				if a.Required {
					flags = "required"
				}
				if a.Group != "" {
					flags += ", group=" + a.Group
				}
				fmt.Printf("  %-16s (%s) %s\n", a.Name, flags, a.Description)
			}
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	var argPairs []string

	cmd := &cobra.Command{
		Use:   "validate <tool>",
		Short: "Check an argument map against a descriptor's schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := newToolSet()
			if err != nil {
				return err
			}
			t, err := set.Tool(args[0])
			if err != nil {
				return err
			}

			m, err := parseArgPairs(argPairs)
			if err != nil {
				return err
			}
			if !t.Validate(m) {
				return errors.New(t.ErrorMessage(m))
			}
			fmt.Println("arguments valid")
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&argPairs, "arg", nil, "argument as name=value (repeatable)")
	return cmd
}

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <tool>",
		Short: "Print a descriptor's rendered payload script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := newToolSet()
			if err != nil {
				return err
			}
			t, err := set.Tool(args[0])
			if err != nil {
				return err
			}
			fmt.Print(t.Content)
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var (
		scriptPath    string
		scriptContent string
		envPairs      []string
		workdir       string
	)

	cmd := &cobra.Command{
		Use:   "run [-- script args...]",
		Short: "Run a Python script locally (path or inline content)",
		RunE: func(cmd *cobra.Command, args []string) error {
			envMap, err := parseArgPairsString(envPairs)
			if err != nil {
				return err
			}

			runner, err := localrunner.New(localrunner.WithLogger(slog.Default()))
			if err != nil {
				return err
			}
			res, err := runner.Run(cmd.Context(), localrunner.Request{
				ScriptPath:    scriptPath,
				ScriptContent: scriptContent,
				Args:          args,
				Env:           envMap,
				Workdir:       workdir,
			})
			if err != nil {
				return err
			}

			if res.Stdout != "" {
				fmt.Print(res.Stdout)
			}
			if res.Stderr != "" {
				fmt.Fprint(os.Stderr, res.Stderr)
			}
			if res.TimedOut {
				return errors.New("script timed out")
			}
			if res.ExitCode != 0 {
				return fmt.Errorf("script exited with code %d", res.ExitCode)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scriptPath, "script", "", "path to the script file")
	cmd.Flags().StringVar(&scriptContent, "content", "", "inline script content")
	cmd.Flags().StringArrayVar(&envPairs, "env", nil, "environment as NAME=value (repeatable)")
	cmd.Flags().StringVar(&workdir, "workdir", "", "working directory relative to the script")
	return cmd
}

func newSandboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Create and drive remote sandbox sessions",
	}
	cmd.AddCommand(newSandboxCreateCmd(), newSandboxExecCmd(), newSandboxListCmd())
	return cmd
}

func newProviderClient() (*csbclient.Client, error) {
	apiKey := os.Getenv("CSB_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("CODE_SANDBOX_API")
	}
	if apiKey == "" {
		return nil, errors.New("set CSB_API_KEY (or CODE_SANDBOX_API) to use sandbox commands")
	}
	return csbclient.New(apiKey, csbclient.WithLogger(slog.Default()))
}

func newSandboxCreateCmd() *cobra.Command {
	var (
		name          string
		template      string
		scriptPath    string
		scriptContent string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a sandbox from script content and persist its metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			content := scriptContent
			if content == "" && scriptPath != "" {
				data, err := os.ReadFile(scriptPath)
				if err != nil {
					return err
				}
				content = string(data)
			}
			if content == "" {
				return errors.New("either --content or --script is required")
			}

			client, err := newProviderClient()
			if err != nil {
				return err
			}
			sb, err := client.CreateSandbox(cmd.Context(), csbclient.CreateSandboxRequest{
				Title:    name,
				Files:    map[string]csbclient.FileContent{"main.py": {Content: content}},
				Template: template,
				Privacy:  "unlisted",
			})
			if err != nil {
				return err
			}

			store, err := sandboxstore.New(sandboxstore.WithLogger(slog.Default()))
			if err != nil {
				return err
			}
			path, err := store.Save(sandboxstore.Record{
				ID:       sb.ID,
				Name:     name,
				URL:      client.SandboxURL(sb.ID),
				Title:    sb.Title,
				Template: template,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Sandbox created: %s\n", sb.ID)
			fmt.Printf("URL: %s\n", client.SandboxURL(sb.ID))
			fmt.Printf("Metadata saved to: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "python-script", "human name for the sandbox")
	cmd.Flags().StringVar(&template, "template", "python", "provider template")
	cmd.Flags().StringVar(&scriptPath, "script", "", "path to the script file")
	cmd.Flags().StringVar(&scriptContent, "content", "", "inline script content")
	return cmd
}

func newSandboxExecCmd() *cobra.Command {
	var (
		command string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "exec <sandbox-id-or-name>",
		Short: "Run a command in an existing sandbox session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sandboxstore.New(sandboxstore.WithLogger(slog.Default()))
			if err != nil {
				return err
			}
			rec, err := store.Resolve(args[0])
			if err != nil {
				return err
			}

			client, err := newProviderClient()
			if err != nil {
				return err
			}
			res, err := client.RunCommand(cmd.Context(), rec.ID, command, timeout)
			if res.Output != "" {
				fmt.Print(res.Output)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&command, "command", "python main.py", "command to run in the sandbox")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "command timeout")
	return cmd
}

func newSandboxListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List persisted sandbox sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sandboxstore.New(sandboxstore.WithLogger(slog.Default()))
			if err != nil {
				return err
			}
			recs, err := store.List()
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("no persisted sandboxes")
				return nil
			}
			for _, r := range recs {
				fmt.Printf("%-24s %-20s %s\n", r.ID, r.Name, r.URL)
			}
			return nil
		},
	}
}

func parseArgPairs(pairs []string) (map[string]any, error) {
	m := map[string]any{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid argument %q, want name=value", p)
		}
		m[k] = v
	}
	return m, nil
}

func parseArgPairsString(pairs []string) (map[string]string, error) {
	m := map[string]string{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid environment entry %q, want NAME=value", p)
		}
		m[k] = v
	}
	return m, nil
}
