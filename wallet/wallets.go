package wallet

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"
	"sort"

	"github.com/jlynch25/ticketbox/txerrors"
)

// Wallets struct
type Wallets struct {
	Wallets map[string]*Wallet

	path string
}

// CreateWallets opens the keystore at path. A missing file is an empty
// keystore.
func CreateWallets(path string) (*Wallets, error) {
	wallets := Wallets{
		Wallets: make(map[string]*Wallet),
		path:    path,
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &wallets, nil
	}
	if err := wallets.LoadFile(); err != nil {
		return nil, err
	}
	return &wallets, nil
}

// AddWallet function
func (ws *Wallets) AddWallet() (string, error) {
	wallet, err := MakeWallet()
	if err != nil {
		return "", err
	}
	address := wallet.Address()
	ws.Wallets[address] = wallet
	return address, nil
}

// GetAllAddresses function
func (ws *Wallets) GetAllAddresses() []string {
	addresses := make([]string, 0, len(ws.Wallets))
	for address := range ws.Wallets {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	return addresses
}

// GetWallet function
func (ws *Wallets) GetWallet(address string) (Wallet, error) {
	wallet, ok := ws.Wallets[address]
	if !ok {
		return Wallet{}, txerrors.NotFound("wallet", address)
	}
	return *wallet, nil
}

// LoadFile function
func (ws *Wallets) LoadFile() error {
	fileContent, err := os.ReadFile(ws.path)
	if err != nil {
		return err
	}

	var wallets Wallets
	decoder := gob.NewDecoder(bytes.NewReader(fileContent))
	if err := decoder.Decode(&wallets); err != nil {
		return txerrors.Wrap(txerrors.KindDecode, err, "keystore %s", ws.path)
	}
	if wallets.Wallets == nil {
		wallets.Wallets = make(map[string]*Wallet)
	}
	ws.Wallets = wallets.Wallets
	return nil
}

// SaveFile function
func (ws *Wallets) SaveFile() error {
	var content bytes.Buffer
	encoder := gob.NewEncoder(&content)
	if err := encoder.Encode(ws); err != nil {
		return err
	}

	if dir := filepath.Dir(ws.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(ws.path, content.Bytes(), 0o600)
}
