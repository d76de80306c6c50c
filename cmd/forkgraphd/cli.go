package main

import (
	"crypto/ecdsa"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"path/filepath"

	"forkgraph/core"

	"github.com/ethereum/go-ethereum/crypto"
)

// handleCLICommands dispatches a subcommand before the daemon's flag set is
// parsed; an unrecognised or absent subcommand falls through to running as
// the daemon.
func handleCLICommands() {
	if len(os.Args) < 2 {
		return
	}

	switch os.Args[1] {
	case "send":
		handleSendCommand()
	case "generate-key":
		handleGenerateKeyCommand()
	case "help":
		printHelp()
	default:
		return
	}

	os.Exit(0)
}

// handleSendCommand builds a 48-byte transfer statement (from‖to‖amount,
// the Runtime's opaque statement format) and wraps it as a pooled
// Transaction, printing its hash for the operator to gossip via
// PleaseMineThisTransaction. The private key only derives the sender
// address (crypto.PubkeyToAddress) — the statement format carries no
// signature field, so nothing here is actually signed.
func handleSendCommand() {
	sendCmd := flag.NewFlagSet("send", flag.ExitOnError)
	toAddr := sendCmd.String("to", "", "Recipient address (hex, 20 bytes)")
	amount := sendCmd.String("amount", "", "Amount to send")
	privKeyHex := sendCmd.String("privkey", "", "Private key (hex)")
	sendCmd.Parse(os.Args[2:])

	if *toAddr == "" || *amount == "" || *privKeyHex == "" {
		fmt.Println("Usage: forkgraphd send -to=<address> -amount=<amount> -privkey=<private_key>")
		os.Exit(1)
	}

	privKeyBytes, err := hex.DecodeString(*privKeyHex)
	if err != nil {
		log.Fatalf("invalid private key: %v", err)
	}
	privKey, err := crypto.ToECDSA(privKeyBytes)
	if err != nil {
		log.Fatalf("invalid private key format: %v", err)
	}

	toBytes, err := hex.DecodeString(*toAddr)
	if err != nil || len(toBytes) != 20 {
		log.Fatalf("invalid recipient address, want 20 hex-encoded bytes: %v", err)
	}

	amountInt, ok := new(big.Int).SetString(*amount, 10)
	if !ok {
		log.Fatalf("invalid amount: %s", *amount)
	}
	if amountInt.BitLen() > 64 {
		log.Fatalf("amount exceeds the statement format's 8-byte width")
	}

	pubKey := privKey.Public().(*ecdsa.PublicKey)
	from := crypto.PubkeyToAddress(*pubKey).Bytes()

	stmt := make([]byte, 48)
	copy(stmt[0:20], from)
	copy(stmt[20:40], toBytes)
	amountBytes := amountInt.Bytes()
	copy(stmt[48-len(amountBytes):48], amountBytes)

	tx := core.NewTransaction(stmt)

	fmt.Printf("Transaction built:\n")
	fmt.Printf("  From:   %s\n", hex.EncodeToString(from))
	fmt.Printf("  To:     %s\n", *toAddr)
	fmt.Printf("  Amount: %s\n", amountInt.String())
	fmt.Printf("  Hash:   %s\n", tx.Hash)
	fmt.Printf("\nGossip this transaction's data as a PleaseMineThisTransaction message to pool it.\n")
}

func handleGenerateKeyCommand() {
	generateCmd := flag.NewFlagSet("generate-key", flag.ExitOnError)
	saveToFile := generateCmd.Bool("save", false, "Save keys to files")
	outputDir := generateCmd.String("output-dir", ".", "Directory to save key files")
	generateCmd.Parse(os.Args[2:])

	privKey, err := crypto.GenerateKey()
	if err != nil {
		log.Fatalf("failed to generate key: %v", err)
	}
	pubKey := privKey.Public().(*ecdsa.PublicKey)
	address := crypto.PubkeyToAddress(*pubKey)
	privKeyHex := hex.EncodeToString(crypto.FromECDSA(privKey))
	addressHex := hex.EncodeToString(address.Bytes())

	fmt.Printf("Generated a new keypair:\n")
	fmt.Printf("  Private key: %s\n", privKeyHex)
	fmt.Printf("  Address:     %s\n", addressHex)

	if *saveToFile {
		if err := os.MkdirAll(*outputDir, 0755); err != nil {
			log.Fatalf("failed to create output directory: %v", err)
		}
		privKeyFile := filepath.Join(*outputDir, "forkgraph_private_key.txt")
		if err := os.WriteFile(privKeyFile, []byte(privKeyHex), 0600); err != nil {
			log.Fatalf("failed to save private key: %v", err)
		}
		addressFile := filepath.Join(*outputDir, "forkgraph_address.txt")
		if err := os.WriteFile(addressFile, []byte(addressHex), 0644); err != nil {
			log.Fatalf("failed to save address: %v", err)
		}
		fmt.Printf("\nSaved private key to %s and address to %s\n", privKeyFile, addressFile)
	}
}

func printHelp() {
	fmt.Println("forkgraphd - a hash-based proof-of-work block-graph node")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  forkgraphd [flags]                 - run as daemon")
	fmt.Println("  forkgraphd send [flags]            - build a transfer statement")
	fmt.Println("  forkgraphd generate-key [flags]    - generate a new keypair")
	fmt.Println("  forkgraphd help                    - show this help")
	fmt.Println()
	fmt.Println("Daemon flags:")
	fmt.Println("  --data-dir=<path>        - data directory (runtime db + block log)")
	fmt.Println("  --p2p-port=<port>        - p2p listen port")
	fmt.Println("  --peer-multiaddr=<addr>  - peer to connect to")
	fmt.Println("  --prune-depth=<n>        - block index heights to keep (0 = all)")
}
