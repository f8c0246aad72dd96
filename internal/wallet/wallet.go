// Package wallet holds the agent's Ethereum account: balance queries and
// plain ETH transfers over JSON-RPC.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Wallet is the funds capability the pipeline depends on.
type Wallet interface {
	// Balance returns the account balance in ether.
	Balance(ctx context.Context) (float64, error)

	// Transfer sends amountEth to the destination address and returns the
	// transaction hash.
	Transfer(ctx context.Context, to string, amountEth float64) (string, error)
}

// addressPattern matches raw hex addresses and ENS names in free text.
var addressPattern = regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b|\b\S+\.eth\b`)

// ExtractAddresses returns every wallet address or ENS name mentioned in the
// given texts, in order of first appearance.
func ExtractAddresses(texts []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range texts {
		for _, m := range addressPattern.FindAllString(t, -1) {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}

// EthWallet implements Wallet against an Ethereum JSON-RPC endpoint.
type EthWallet struct {
	key    *ecdsa.PrivateKey
	rpcURL string
}

// New creates a wallet from a hex-encoded private key.
func New(privateKeyHex, rpcURL string) (*EthWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &EthWallet{key: key, rpcURL: rpcURL}, nil
}

// NewAccount generates a fresh account and returns its private key hex and
// checksummed address.
func NewAccount() (privateKeyHex, address string, err error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", "", fmt.Errorf("generate key: %w", err)
	}
	privateKeyHex = hex.EncodeToString(crypto.FromECDSA(key))
	address = crypto.PubkeyToAddress(key.PublicKey).Hex()
	return privateKeyHex, address, nil
}

// Address returns the wallet's checksummed address.
func (w *EthWallet) Address() string {
	return crypto.PubkeyToAddress(w.key.PublicKey).Hex()
}

func (w *EthWallet) Balance(ctx context.Context) (float64, error) {
	client, err := ethclient.DialContext(ctx, w.rpcURL)
	if err != nil {
		return 0, fmt.Errorf("dial rpc: %w", err)
	}
	defer client.Close()

	wei, err := client.BalanceAt(ctx, crypto.PubkeyToAddress(w.key.PublicKey), nil)
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return WeiToEth(wei), nil
}

func (w *EthWallet) Transfer(ctx context.Context, to string, amountEth float64) (string, error) {
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("invalid destination address %q", to)
	}
	toAddr := common.HexToAddress(to)

	client, err := ethclient.DialContext(ctx, w.rpcURL)
	if err != nil {
		return "", fmt.Errorf("dial rpc: %w", err)
	}
	defer client.Close()

	fromAddr := crypto.PubkeyToAddress(w.key.PublicKey)

	nonce, err := client.PendingNonceAt(ctx, fromAddr)
	if err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("gas price: %w", err)
	}
	gasLimit := uint64(21000) // plain value transfer

	value := EthToWei(amountEth)

	// Refuse to build a transaction the account cannot pay for.
	balance, err := client.BalanceAt(ctx, fromAddr, nil)
	if err != nil {
		return "", fmt.Errorf("balance: %w", err)
	}
	gasCost := new(big.Int).Mul(gasPrice, big.NewInt(int64(gasLimit)))
	totalCost := new(big.Int).Add(value, gasCost)
	if balance.Cmp(totalCost) < 0 {
		return "", fmt.Errorf("insufficient balance: have %s wei, need %s wei", balance, totalCost)
	}

	chainID, err := client.NetworkID(ctx)
	if err != nil {
		return "", fmt.Errorf("chain id: %w", err)
	}

	tx := types.NewTransaction(nonce, toAddr, value, gasLimit, gasPrice, nil)
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(chainID), w.key)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}

	if err := client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	return signedTx.Hash().Hex(), nil
}

// WeiToEth converts a wei amount to ether.
func WeiToEth(wei *big.Int) float64 {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(1e18))
	eth, _ := f.Float64()
	return eth
}

// EthToWei converts an ether amount to wei.
func EthToWei(eth float64) *big.Int {
	f := new(big.Float).SetFloat64(eth)
	f.Mul(f, big.NewFloat(1e18))
	wei, _ := f.Int(nil)
	return wei
}
