package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vennlabs/custodiad/internal/crypto"
)

var keygenAlgorithm string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a signing keypair and its ledger identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		var algo crypto.Algorithm
		switch keygenAlgorithm {
		case "ed25519":
			algo = crypto.Ed25519
		case "secp256k1":
			algo = crypto.Secp256k1
		default:
			return fmt.Errorf("unknown algorithm: %s (supported: ed25519, secp256k1)", keygenAlgorithm)
		}

		provider, err := crypto.Provider(algo)
		if err != nil {
			return err
		}
		priv, pub, err := provider.GenerateKeypair()
		if err != nil {
			return fmt.Errorf("keypair generation failed: %w", err)
		}

		fmt.Printf("algorithm:   %s\n", algo)
		fmt.Printf("identity:    %s\n", crypto.AccountID(pub))
		fmt.Printf("public key:  %s\n", hex.EncodeToString(pub))
		fmt.Printf("private key: %s\n", hex.EncodeToString(priv))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVar(&keygenAlgorithm, "algorithm", "ed25519", "signature algorithm")
}
