package cli

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jlynch25/ticketbox/txerrors"
	"github.com/jlynch25/ticketbox/wallet"
)

func newWalletCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage local ed25519 wallets",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "new",
			Short: "Create a wallet and print its address",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ws, err := wallet.CreateWallets(a.cfg.Wallet.Keystore)
				if err != nil {
					return err
				}
				address, err := ws.AddWallet()
				if err != nil {
					return err
				}
				if err := ws.SaveFile(); err != nil {
					return err
				}
				a.log.WithField("keystore", a.cfg.Wallet.Keystore).Info("wallet created")
				fmt.Fprintln(cmd.OutOrStdout(), address)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List keystore addresses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ws, err := wallet.CreateWallets(a.cfg.Wallet.Keystore)
				if err != nil {
					return err
				}
				for _, address := range ws.GetAllAddresses() {
					fmt.Fprintln(cmd.OutOrStdout(), address)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "sign <tx-bytes-base64>",
			Short: "Sign transaction bytes with the account's key and print the serialised signature",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				txBytes, err := decodeBase64("transaction bytes", args[0])
				if err != nil {
					return err
				}
				address, err := a.account()
				if err != nil {
					return err
				}
				ws, err := wallet.CreateWallets(a.cfg.Wallet.Keystore)
				if err != nil {
					return err
				}
				w, err := ws.GetWallet(address)
				if err != nil {
					return err
				}
				a.log.WithField("address", address).Debug("signing transaction bytes")
				fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(w.Sign(txBytes)))
				return nil
			},
		},
		&cobra.Command{
			Use:   "verify <tx-bytes-base64> <signature-base64>",
			Short: "Check a serialised signature and print the signer's address",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				txBytes, err := decodeBase64("transaction bytes", args[0])
				if err != nil {
					return err
				}
				sig, err := decodeBase64("signature", args[1])
				if err != nil {
					return err
				}
				address, ok := wallet.Verify(txBytes, sig)
				if !ok {
					return txerrors.New(txerrors.KindSigning, "signature does not match the transaction bytes")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "valid, signed by %s\n", address)
				return nil
			},
		},
	)
	return cmd
}

func decodeBase64(what, s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, txerrors.Wrap(txerrors.KindValidation, err, "%s: not base64", what)
	}
	return data, nil
}
