package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"assetmap/cmd/web/utils"
	"assetmap/config"
	"assetmap/internal/assets"
	"assetmap/internal/cache"
	"assetmap/internal/importmap"
	"assetmap/internal/publish"
	"assetmap/internal/server"
)

var download bool

var rootCmd = &cobra.Command{
	Use:     "assetmap",
	Short:   "Fingerprinting asset pipeline with import-map serving",
	Version: utils.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadConfig(); err != nil {
			return err
		}
		setupLogger()
		return nil
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline and serve the asset root",
	RunE:  runServe,
}

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint",
	Short: "Fingerprint the asset root in place and write the manifest",
	RunE:  runFingerprint,
}

var pinCmd = &cobra.Command{
	Use:   "pin [module] [url]",
	Short: "Pin a module specifier to a URL, or vendor it with --download",
	Args:  cobra.ExactArgs(2),
	RunE:  runPin,
}

var unpinCmd = &cobra.Command{
	Use:   "unpin [module]",
	Short: "Remove a pinned module",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnpin,
}

var jsonCmd = &cobra.Command{
	Use:   "json",
	Short: "Print the import-map document for the current root and pins",
	RunE:  runJSON,
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Fingerprint the root and upload it to the configured bucket",
	RunE:  runPublish,
}

func init() {
	pinCmd.Flags().BoolVar(&download, "download", false, "Fetch the module into the asset root instead of pinning the remote URL")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fingerprintCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(unpinCmd)
	rootCmd.AddCommand(jsonCmd)
	rootCmd.AddCommand(publishCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogger configures the global logger for the one-shot commands.
// `serve` replaces it with the full server logger. Logs go to stderr so
// `assetmap json` stays pipeable.
func setupLogger() {
	zerolog.SetGlobalLevel(config.LogLevel())
	if config.IsLocal() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	srv, err := server.NewServer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	cache.LoadCache()
	reg, err := assets.Run(config.AssetRoot(), config.AssetPrefix())
	if err != nil {
		return err
	}
	cache.SaveCache()
	fmt.Printf("%d assets under %s\n", reg.Len(), config.AssetRoot())
	return nil
}

func runPin(cmd *cobra.Command, args []string) error {
	module, rawURL := args[0], args[1]
	if download {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		agent := fmt.Sprintf("assetmap/%s", utils.Version)
		rel, err := importmap.Download(ctx, config.AssetRoot(), module, rawURL, agent)
		if err != nil {
			return err
		}
		fmt.Printf("vendored %s as %s\n", module, rel)
		return nil
	}
	if err := importmap.AddPin(config.PinsPath(), importmap.Entry{Name: module, Path: rawURL}); err != nil {
		return err
	}
	fmt.Printf("pinned %s to %s\n", module, rawURL)
	return nil
}

func runUnpin(cmd *cobra.Command, args []string) error {
	module := args[0]
	removed, err := importmap.RemovePin(config.PinsPath(), module)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("no pin named %s", module)
	}
	fmt.Printf("unpinned %s\n", module)
	return nil
}

func runJSON(cmd *cobra.Command, args []string) error {
	cache.LoadCache()
	reg, err := assets.Preview(config.AssetRoot(), config.AssetPrefix())
	if err != nil {
		return err
	}
	pins, err := importmap.LoadPins(config.PinsPath())
	if err != nil {
		return err
	}
	m, err := importmap.Build(reg, pins)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, m.JSON(), "", "  "); err != nil {
		return err
	}
	fmt.Println(buf.String())
	return nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	cache.LoadCache()
	reg, err := assets.Run(config.AssetRoot(), config.AssetPrefix())
	if err != nil {
		return err
	}
	cache.SaveCache()
	uploader, err := publish.New(config.Bucket())
	if err != nil {
		return err
	}
	return uploader.Sync(cmd.Context(), config.AssetRoot(), reg)
}
