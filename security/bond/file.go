package bond

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rigado/bredr"
	"github.com/rigado/bredr/hci"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type bondInfo struct {
	Bonds []remoteKeyInfo `json:"bonds"`
}

type remoteKeyInfo struct {
	Address     string `json:"address"`
	AddressType uint8  `json:"addressType"`
	LinkKey     string `json:"linkKey"`
	KeyType     uint8  `json:"keyType"`
}

type file struct {
	lock sync.RWMutex
	path string
}

// NewFileStore returns a Store backed by a JSON file. The file is created on
// first use.
func NewFileStore(path string) Store {
	return &file{path: path}
}

func (f *file) Load() ([]Bond, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	bi, err := f.loadBonds()
	if err != nil {
		return nil, err
	}

	out := make([]Bond, 0, len(bi.Bonds))
	for _, rki := range bi.Bonds {
		b, err := rki.bond()
		if err != nil {
			return nil, errors.Wrapf(err, "bond file %v", f.path)
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *file) Find(a bredr.Address) (Bond, error) {
	bonds, err := f.Load()
	if err != nil {
		return Bond{}, err
	}

	for _, b := range bonds {
		if b.Address.Address == a {
			return b, nil
		}
	}
	return Bond{}, NotFoundError{a}
}

func (f *file) Save(b Bond) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	bi, err := f.loadBonds()
	if err != nil {
		return err
	}

	rki := newRemoteKeyInfo(b)
	replaced := false
	for i := range bi.Bonds {
		if bi.Bonds[i].Address == rki.Address {
			bi.Bonds[i] = rki
			replaced = true
		}
	}
	if !replaced {
		bi.Bonds = append(bi.Bonds, rki)
	}

	return f.storeBonds(bi)
}

func (f *file) Delete(a bredr.Address) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	bi, err := f.loadBonds()
	if err != nil {
		return err
	}

	key := a.String()
	kept := bi.Bonds[:0]
	for _, rki := range bi.Bonds {
		if rki.Address != key {
			kept = append(kept, rki)
		}
	}
	if len(kept) == len(bi.Bonds) {
		return NotFoundError{a}
	}
	bi.Bonds = kept

	return f.storeBonds(bi)
}

func newRemoteKeyInfo(b Bond) remoteKeyInfo {
	return remoteKeyInfo{
		Address:     b.Address.Address.String(),
		AddressType: uint8(b.Address.Type),
		LinkKey:     hex.EncodeToString(b.LinkKey[:]),
		KeyType:     uint8(b.KeyType),
	}
}

func (rki remoteKeyInfo) bond() (Bond, error) {
	a, err := bredr.ParseAddress(rki.Address)
	if err != nil {
		return Bond{}, errors.Wrap(err, "invalid address")
	}

	key, err := hex.DecodeString(rki.LinkKey)
	if err != nil {
		return Bond{}, errors.Wrap(err, "failed to decode link key")
	}
	if len(key) != hci.LinkKeySize {
		return Bond{}, errors.Errorf("invalid link key length %v for %v", len(key), rki.Address)
	}

	b := Bond{
		Address: bredr.NewAddressWithType(a, bredr.AddressType(rki.AddressType)),
		KeyType: hci.KeyType(rki.KeyType),
	}
	copy(b.LinkKey[:], key)
	return b, nil
}

func (f *file) loadBonds() (*bondInfo, error) {
	var bonds bondInfo

	data, err := ioutil.ReadFile(f.path)
	if os.IsNotExist(err) {
		bonds.Bonds = make([]remoteKeyInfo, 0, 1)
		return &bonds, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read bond file")
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &bonds); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal bond file")
		}
	}

	if len(bonds.Bonds) == 0 {
		bonds.Bonds = make([]remoteKeyInfo, 0, 1)
	}

	return &bonds, nil
}

func (f *file) storeBonds(bonds *bondInfo) error {
	out, err := json.MarshalIndent(bonds, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal bonds")
	}

	// replace atomically
	tmp := f.path + ".tmp"
	if err := ioutil.WriteFile(tmp, out, 0600); err != nil {
		return errors.Wrap(err, "failed to write bond file")
	}
	return errors.Wrap(os.Rename(tmp, f.path), "failed to update bond file")
}
