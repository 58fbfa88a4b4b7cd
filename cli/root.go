// Package cli is the ticketbox command line.
package cli

import (
	"fmt"
	"os"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/vrecan/death.v3"

	"github.com/jlynch25/ticketbox/applogger"
	"github.com/jlynch25/ticketbox/config"
	"github.com/jlynch25/ticketbox/localcache"
	"github.com/jlynch25/ticketbox/txerrors"
	"github.com/jlynch25/ticketbox/wallet"
)

type app struct {
	cfgPath string
	address string

	cfg config.Config
	log *logrus.Logger

	store     localcache.Store
	closeOnce sync.Once
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "ticketbox",
		Short:        "Inspect and verify ticket contract state",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = applogger.NewWithOutput(cfg.Log, cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closeStore()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.address, "address", "", "account address (defaults to the only keystore wallet)")

	root.AddCommand(
		newNetworkCommand(a),
		newWalletCommand(a),
		newCacheCommand(a),
		newInspectCommand(a),
		newVerifyCommand(a),
	)
	return root
}

// openCache opens the configured store and arranges for it to be closed on
// SIGINT/SIGTERM.
func (a *app) openCache() (*localcache.Cache, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.store = store

	d := death.NewDeath(syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	go d.WaitForDeathWithFunc(func() {
		defer os.Exit(1)
		if err := a.closeStore(); err != nil {
			a.log.WithError(err).Error("failed to close cache store")
		}
	})
	return localcache.New(store, a.log), nil
}

func (a *app) openStore() (localcache.Store, error) {
	c := a.cfg.Cache
	switch c.Backend {
	case "memory":
		return localcache.NewMemoryStore(), nil
	case "redis":
		return localcache.DialRedis(c.RedisAddr, c.RedisDB)
	}
	if !localcache.Exists(c.Path) {
		a.log.WithField("path", c.Path).Debug("creating cache database")
	}
	return localcache.OpenBadger(c.Path, a.log)
}

func (a *app) closeStore() error {
	var err error
	a.closeOnce.Do(func() {
		if a.store != nil {
			err = a.store.Close()
		}
	})
	return err
}

// account resolves --address, falling back to the keystore when it holds
// exactly one wallet.
func (a *app) account() (string, error) {
	if a.address != "" {
		return a.address, nil
	}
	ws, err := wallet.CreateWallets(a.cfg.Wallet.Keystore)
	if err != nil {
		return "", err
	}
	addrs := ws.GetAllAddresses()
	switch len(addrs) {
	case 1:
		return addrs[0], nil
	case 0:
		return "", txerrors.Validation("no --address given and keystore %s is empty", a.cfg.Wallet.Keystore)
	}
	return "", txerrors.Validation("no --address given and keystore holds %d wallets", len(addrs))
}

func newNetworkCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "network",
		Short: "Print the configured networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range a.cfg.NetworkNames() {
				n := a.cfg.Networks[name]
				marker := " "
				if name == a.cfg.Network {
					marker = "*"
				}
				pkg := n.PackageID
				if pkg == "" {
					pkg = "-"
				}
				fmt.Fprintf(out, "%s %-8s %s package=%s\n", marker, name, n.URL, pkg)
			}
			return nil
		},
	}
}
