package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/layer-3/tutorauth"
	"github.com/layer-3/tutorauth/adapters/store"
	"github.com/layer-3/tutorauth/adapters/wallet"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/internal/config"
	"github.com/layer-3/tutorauth/internal/logging"
	"github.com/layer-3/tutorauth/ports"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app is the state shared by every command once flags are parsed
type app struct {
	cfg    config.CLIConfig
	logger zerolog.Logger
	scheme core.Scheme
	client tutorauth.Client
	api    *apiClient
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadCLI(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	a := &app{cfg: cfg}
	var schemeName, storeURL string

	rootCmd := &cobra.Command{
		Use:   "walletctl",
		Short: "Sign in to Tutorial Platform with a wallet",
		Long: `walletctl signs the Tutorial Platform challenge with a wallet key or an
external wallet, keeps the resulting 24 hour session, and presents it to the
API for privileged course and profile changes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(schemeName, storeURL)
		},
	}

	rootCmd.PersistentFlags().StringVar(&schemeName, "scheme", core.Ethereum.Name, "wallet scheme: ethereum or solana")
	rootCmd.PersistentFlags().StringVar(&a.cfg.APIURL, "api", cfg.APIURL, "API base URL")
	rootCmd.PersistentFlags().StringVar(&a.cfg.Home, "home", cfg.Home, "directory holding the session file")
	rootCmd.PersistentFlags().StringVar(&storeURL, "store", "", "redis:// URL to keep sessions in Redis instead of the session file")

	rootCmd.AddCommand(
		loginCmd(a),
		whoamiCmd(a),
		logoutCmd(a),
		courseCmd(a),
		profileCmd(a),
	)

	// Interrupt cancels a pending signature request
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		if core.NeedsReauthentication(err) {
			fmt.Fprintln(os.Stderr, "Run `walletctl login` to sign in again.")
		}
		stop()
		os.Exit(1)
	}
}

func (a *app) setup(schemeName, storeURL string) error {
	a.logger = logging.Setup(a.cfg.LogLevel)

	scheme, err := core.SchemeByName(schemeName)
	if err != nil {
		return err
	}
	a.scheme = scheme

	persistent, err := a.openPersistent(storeURL)
	if err != nil {
		return err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	cookies, err := store.NewJarCookieStore(jar, a.cfg.APIURL, "")
	if err != nil {
		return err
	}

	a.client, err = tutorauth.New(tutorauth.Options{
		Scheme:     scheme,
		Persistent: persistent,
		Cookies:    cookies,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}
	a.api = newAPIClient(a.cfg.APIURL, scheme, &http.Client{Jar: jar, Timeout: 30 * time.Second})

	return nil
}

func (a *app) openPersistent(storeURL string) (ports.KeyValueStore, error) {
	if storeURL != "" {
		opts, err := redis.ParseURL(storeURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse store URL: %w", err)
		}
		return store.NewRedisStore(redis.NewClient(opts), "walletctl:"), nil
	}

	home := a.cfg.Home
	if home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		home = filepath.Join(dir, ".walletctl")
	}
	return store.NewFileStore(filepath.Join(home, "sessions.json")), nil
}

// provider returns the key-backed signer from WALLETCTL_PRIVATE_KEY, or a
// prompt for an external wallet when no key is configured
func (a *app) provider() (ports.SignatureProvider, string, error) {
	key := strings.TrimSpace(a.cfg.PrivateKey)
	if key == "" {
		return wallet.NewPromptSigner(a.scheme, os.Stdin, os.Stdout), "", nil
	}

	if a.scheme.Name == core.Solana.Name {
		signer, err := wallet.Ed25519KeySignerFromBase58(key)
		if err != nil {
			return nil, "", err
		}
		return signer, signer.Address(), nil
	}

	signer, err := wallet.EthereumKeySignerFromHex(key)
	if err != nil {
		return nil, "", err
	}
	return signer, signer.Address(), nil
}
