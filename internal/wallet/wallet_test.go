package wallet

import (
	"math/big"
	"testing"
)

func TestExtractAddresses(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  []string
	}{
		{
			"hex address",
			[]string{"send it to 0x52908400098527886E0F7030069857D2E4169EE7 please"},
			[]string{"0x52908400098527886E0F7030069857D2E4169EE7"},
		},
		{
			"ens name",
			[]string{"my wallet is vitalik.eth thanks"},
			[]string{"vitalik.eth"},
		},
		{
			"mixed across texts",
			[]string{"0x52908400098527886E0F7030069857D2E4169EE7", "also me.eth"},
			[]string{"0x52908400098527886E0F7030069857D2E4169EE7", "me.eth"},
		},
		{
			"duplicates collapse",
			[]string{"a.eth a.eth", "a.eth"},
			[]string{"a.eth"},
		},
		{
			"too-short hex ignored",
			[]string{"0x1234 is not an address"},
			nil,
		},
		{
			"no addresses",
			[]string{"just chatting about the weather"},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAddresses(tt.texts)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("index %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewAccount(t *testing.T) {
	privHex, address, err := NewAccount()
	if err != nil {
		t.Fatalf("new account: %v", err)
	}
	if privHex == "" || address == "" {
		t.Fatal("expected non-empty key and address")
	}

	w, err := New(privHex, "http://localhost:8545")
	if err != nil {
		t.Fatalf("reload key: %v", err)
	}
	if w.Address() != address {
		t.Errorf("derived address %s does not match %s", w.Address(), address)
	}
}

func TestNew_InvalidKey(t *testing.T) {
	if _, err := New("not-hex", "http://localhost:8545"); err == nil {
		t.Fatal("expected error for invalid key")
	}
}

func TestNew_StripsHexPrefix(t *testing.T) {
	privHex, _, err := NewAccount()
	if err != nil {
		t.Fatalf("new account: %v", err)
	}
	if _, err := New("0x"+privHex, "http://localhost:8545"); err != nil {
		t.Errorf("expected 0x-prefixed key to parse: %v", err)
	}
}

func TestWeiEthConversion(t *testing.T) {
	oneEth := big.NewInt(1e18)
	if got := WeiToEth(oneEth); got != 1.0 {
		t.Errorf("WeiToEth(1e18) = %f, want 1.0", got)
	}
	if got := EthToWei(0.5); got.Cmp(big.NewInt(5e17)) != 0 {
		t.Errorf("EthToWei(0.5) = %s, want 5e17", got)
	}
	if got := WeiToEth(big.NewInt(0)); got != 0 {
		t.Errorf("WeiToEth(0) = %f, want 0", got)
	}
}
