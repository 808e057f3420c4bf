package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/gogo/protobuf/proto"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/app"
	"github.com/supi-pay/supi/coin"
	"github.com/supi-pay/supi/crypto"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/x/otpescrow"
)

type signFlags struct {
	chainID string
	seq     int64
	raw     bool
}

func (f *signFlags) register(cmd *cobra.Command) {
	cmd.Flags().String(flagKey, "", "private key file, defaults to priv.key in the home directory")
	cmd.Flags().StringVar(&f.chainID, "chain-id", "", "chain id, defaults to CHAIN_ID from the configuration")
	cmd.Flags().Int64Var(&f.seq, "seq", 0, "signature sequence, see GET /accounts/{address}")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "write the binary transaction instead of hex")
}

func newSignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Build and sign an escrow transaction",
	}
	cmd.AddCommand(newSignCreateCmd(), newSignCancelCmd())
	return cmd
}

func newSignCreateCmd() *cobra.Command {
	var (
		sf        signFlags
		paymentID string
		receiver  string
		amount    string
		otp       string
		otpHash   string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Sign a transaction locking funds until released with the passcode",
		Long: `Sign a transaction locking funds until released with the passcode.

The passcode is never part of the transaction. Either give the plain passcode
with --otp, which is hashed locally, or its hex encoded SHA-256 digest with
--otp-hash. A random payment id is used when none is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := signingKey(cmd)
			if err != nil {
				return err
			}
			to, err := supi.ParseAddress(receiver)
			if err != nil {
				return errors.Wrap(err, "receiver")
			}
			c, err := coin.ParseHumanFormat(amount)
			if err != nil {
				return errors.Wrap(err, "amount")
			}

			var hash []byte
			switch {
			case otp != "" && otpHash != "":
				return errors.Wrap(errors.ErrInvalidInput, "use either --otp or --otp-hash")
			case otp != "":
				hash = otpescrow.HashOTP(otp)
			case otpHash != "":
				if hash, err = hex.DecodeString(otpHash); err != nil {
					return errors.Wrap(errors.ErrInvalidInput, "otp hash must be hex encoded")
				}
			default:
				return errors.Wrap(errors.ErrEmpty, "passcode")
			}
			if paymentID == "" {
				paymentID = uuid.NewString()
			}

			msg := &otpescrow.CreateMsg{
				PaymentID: paymentID,
				Sender:    key.PublicKey().Address(),
				Receiver:  to,
				Amount:    c.Amount,
				Token:     c.Ticker,
				OtpHash:   hash,
			}
			if err := sign(cmd, &sf, key, msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "payment id: %s\n", paymentID)
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&paymentID, "payment-id", "", "payment id, random when empty")
	cmd.Flags().StringVar(&receiver, "receiver", "", "address receiving the funds on release")
	cmd.Flags().StringVar(&amount, "amount", "", `amount to lock, for example "100 XLM"`)
	cmd.Flags().StringVar(&otp, "otp", "", "plain passcode")
	cmd.Flags().StringVar(&otpHash, "otp-hash", "", "hex encoded SHA-256 digest of the passcode")
	_ = cmd.MarkFlagRequired("receiver")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newSignCancelCmd() *cobra.Command {
	var (
		sf        signFlags
		paymentID string
	)
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Sign a transaction returning the escrowed funds to the sender",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := signingKey(cmd)
			if err != nil {
				return err
			}
			return sign(cmd, &sf, key, &otpescrow.CancelMsg{PaymentID: paymentID})
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&paymentID, "payment-id", "", "payment id of the escrow")
	_ = cmd.MarkFlagRequired("payment-id")
	return cmd
}

func signingKey(cmd *cobra.Command) (*crypto.PrivateKey, error) {
	path, err := keyPath(cmd)
	if err != nil {
		return nil, err
	}
	return readKey(path)
}

// sign validates the message, signs it and writes the transaction to the
// command output.
func sign(cmd *cobra.Command, sf *signFlags, key *crypto.PrivateKey, msg supi.Msg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	chainID := sf.chainID
	if chainID == "" {
		conf, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		chainID = conf.ChainID
	}
	if !supi.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInvalidInput, "chain id %q", chainID)
	}

	tx, err := app.NewTx(msg)
	if err != nil {
		return err
	}
	if err := tx.Sign(key, chainID, sf.seq); err != nil {
		return err
	}
	raw, err := proto.Marshal(tx)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidMsg, err.Error())
	}
	return writeTx(cmd.OutOrStdout(), raw, sf.raw)
}

func writeTx(w io.Writer, raw []byte, binary bool) error {
	if binary {
		_, err := w.Write(raw)
		return err
	}
	_, err := fmt.Fprintln(w, hex.EncodeToString(raw))
	return err
}
