package ir

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
)

// Config record layout:
//
//	offset  size  field
//	     0     8  discriminator = sha256("account:ConfigRecord")[:8]
//	     8    32  authority
//	    40    32  derivative mint
//	    72    32  reserve mint
//	   104    32  vault
//	   136     8  total_wrapped (little endian)
//	   144     1  mint authority bump
//	   145     1  vault authority bump
//	   146     1  is_initialized (0 or 1)
const (
	ConfigDiscriminatorLen = 8
	ConfigBodyLen          = 4*AddressLength + 8 + 1 + 1 + 1
	ConfigRecordLen        = ConfigDiscriminatorLen + ConfigBodyLen
)

// ErrCorruptConfig is returned when stored config bytes cannot be decoded.
var ErrCorruptConfig = errors.New("corrupt config record")

// ConfigDiscriminator tags stored config records so another record type
// can never be decoded as a config.
var ConfigDiscriminator = func() [ConfigDiscriminatorLen]byte {
	sum := sha256.Sum256([]byte("account:ConfigRecord"))
	var d [ConfigDiscriminatorLen]byte
	copy(d[:], sum[:ConfigDiscriminatorLen])
	return d
}()

// MarshalBinary encodes c in the fixed layout.
func (c Config) MarshalBinary() ([]byte, error) {
	buf := make([]byte, ConfigRecordLen)
	copy(buf[0:8], ConfigDiscriminator[:])
	copy(buf[8:40], c.Authority[:])
	copy(buf[40:72], c.DerivativeMint[:])
	copy(buf[72:104], c.ReserveMint[:])
	copy(buf[104:136], c.Vault[:])
	binary.LittleEndian.PutUint64(buf[136:144], c.TotalWrapped)
	buf[144] = c.MintAuthorityBump
	buf[145] = c.VaultAuthorityBump
	if c.IsInitialized {
		buf[146] = 1
	}
	return buf, nil
}

// UnmarshalBinary decodes the fixed layout into c.
func (c *Config) UnmarshalBinary(data []byte) error {
	if len(data) != ConfigRecordLen {
		return fmt.Errorf("%w: length %d, want %d", ErrCorruptConfig, len(data), ConfigRecordLen)
	}
	if [ConfigDiscriminatorLen]byte(data[0:8]) != ConfigDiscriminator {
		return fmt.Errorf("%w: discriminator mismatch", ErrCorruptConfig)
	}

	var out Config
	copy(out.Authority[:], data[8:40])
	copy(out.DerivativeMint[:], data[40:72])
	copy(out.ReserveMint[:], data[72:104])
	copy(out.Vault[:], data[104:136])
	out.TotalWrapped = binary.LittleEndian.Uint64(data[136:144])
	out.MintAuthorityBump = data[144]
	out.VaultAuthorityBump = data[145]
	switch data[146] {
	case 0:
	case 1:
		out.IsInitialized = true
	default:
		return fmt.Errorf("%w: initialized flag %#x", ErrCorruptConfig, data[146])
	}

	*c = out
	return nil
}
