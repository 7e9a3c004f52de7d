package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tech-vexy/blog/config"
	"github.com/tech-vexy/blog/robots"
	"github.com/tech-vexy/blog/site"
	"github.com/tech-vexy/blog/ts"
	"github.com/tech-vexy/blog/webapp"
)

var (
	configFile string
	robotsOut  string
)

func loadConfig() (*config.Config, error) {
	return config.Load(configFile)
}

// staticFS returns the built site, or nil if the generator hasn't run.
func staticFS(dir string) (fs.FS, error) {
	st, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("%s does not exist; serving placeholder page", dir)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

func serve(cmd *cobra.Command, args []string) error {
	cf, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Printf("using site URL: %s", cf.Build.Site)
	log.Printf("using listen address: %s", cf.ListenAddress)

	static, err := staticFS(cf.DistDir)
	if err != nil {
		return fmt.Errorf("opening %s: %w", cf.DistDir, err)
	}

	app, err := webapp.New(&webapp.Config{
		Settings: cf,
		Robots:   robots.NewResponder(cf.Build.Site),
		Clock:    ts.NewRealClock(),
		Static:   static,
	})
	if err != nil {
		return fmt.Errorf("configuring app: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Serve(ctx, cf.ListenAddress)
}

func writeRobots(w io.Writer, siteURL string) error {
	doc, err := robots.Document(siteURL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, doc)
	return err
}

func printRobots(cmd *cobra.Command, args []string) error {
	cf, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if robotsOut == "" {
		return writeRobots(cmd.OutOrStdout(), cf.Build.Site)
	}
	f, err := os.Create(robotsOut)
	if err != nil {
		return fmt.Errorf("creating %s: %w", robotsOut, err)
	}
	if err := writeRobots(f, cf.Build.Site); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", robotsOut, err)
	}
	return f.Close()
}

func printConfig(cmd *cobra.Command, args []string) error {
	cf, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cf); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "blogd",
		Short:         "Host for " + site.Title,
		Long:          site.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .blog.yaml in . or $HOME)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built site and robots.txt",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}

	robotsCmd := &cobra.Command{
		Use:   "robots",
		Short: "Print robots.txt for the configured site URL",
		Args:  cobra.NoArgs,
		RunE:  printRobots,
	}
	robotsCmd.Flags().StringVarP(&robotsOut, "out", "o", "", "write to this file instead of stdout")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE:  printConfig,
	}

	rootCmd.AddCommand(serveCmd, robotsCmd, configCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
