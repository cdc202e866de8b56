// Command cborctl is a small interactive front end for the cbor
// package: decode a hex-encoded item to its diagnostic rendering, or
// pack/unpack a value against a restricted subset of the format
// mini-language directly from the shell. It is ambient tooling around
// the library, not a new protocol surface (SPEC_FULL.md's addition 5).
package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	cbor "github.com/mischief/libcbor/runtime"
)

// CLI mirrors the teacher's flag-struct-plus-kong.Parse layout
// (cborgen/main.go), generalized from a single flat command to kong's
// subcommand support since this tool exposes several distinct
// operations instead of one.
type CLI struct {
	Diag struct {
		Hex string `arg:"" help:"Hex-encoded CBOR item to render."`
	} `cmd:"" help:"Decode a hex-encoded item and print its diagnostic rendering."`

	Validate struct {
		Hex string `arg:"" help:"Hex-encoded CBOR item to validate."`
	} `cmd:"" help:"Report whether a hex-encoded item decodes without error."`

	Pack struct {
		Format string   `arg:"" help:"Format string restricted to 'u' and 's' tokens."`
		Args   []string `arg:"" optional:"" help:"One argument per 'u'/'s' token."`
	} `cmd:"" help:"Pack 'u'/'s' scalar arguments and print the resulting hex; several tokens are packed as an array."`

	Unpack struct {
		Hex    string `arg:"" help:"Hex-encoded CBOR item to unpack."`
		Format string `arg:"" help:"Format string restricted to 'u' and 's' tokens."`
	} `cmd:"" help:"Unpack a hex-encoded item against a 'u'/'s' format and print the values; several tokens expect an array."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cborctl"),
		kong.Description("Inspect and build CBOR items from the command line."),
	)

	var err error
	switch ctx.Command() {
	case "diag <hex>":
		err = runDiag(cli.Diag.Hex)
	case "validate <hex>":
		err = runValidate(cli.Validate.Hex)
	case "pack <format> <args>":
		err = runPack(cli.Pack.Format, cli.Pack.Args)
	case "unpack <hex> <format>":
		err = runUnpack(cli.Unpack.Hex, cli.Unpack.Format)
	default:
		err = fmt.Errorf("unhandled command %q", ctx.Command())
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runDiag(hexStr string) error {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return fmt.Errorf("decode hex: %w", err)
	}
	v, err := cbor.Decode(cbor.DefaultAllocator, raw)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	defer v.Free(cbor.DefaultAllocator)
	fmt.Println(cbor.Sprint(v))
	return nil
}

func runValidate(hexStr string) error {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return fmt.Errorf("decode hex: %w", err)
	}
	v, err := cbor.Decode(cbor.DefaultAllocator, raw)
	if err != nil {
		fmt.Printf("invalid: %v\n", err)
		return nil
	}
	v.Free(cbor.DefaultAllocator)
	fmt.Println("valid")
	return nil
}

// scalarFormat rejects any token outside 'u'/'s', since a shell
// argument vector has no natural way to express nested array/map/tag
// structure or typed bytes.
func scalarFormat(format string) error {
	for _, c := range format {
		if c != 'u' && c != 's' {
			return fmt.Errorf("token %q is not supported from the command line (only 'u' and 's' are)", string(c))
		}
	}
	return nil
}

func runPack(format string, args []string) error {
	if err := scalarFormat(format); err != nil {
		return err
	}
	if len(args) != len(format) {
		return fmt.Errorf("format %q needs %d arguments, got %d", format, len(format), len(args))
	}

	packArgs := make([]any, len(args))
	for i, tok := range format {
		switch tok {
		case 'u':
			n, err := strconv.ParseUint(args[i], 10, 64)
			if err != nil {
				return fmt.Errorf("argument %d: %w", i, err)
			}
			packArgs[i] = n
		case 's':
			packArgs[i] = args[i]
		}
	}

	packFormat := format
	if len(format) > 1 {
		packFormat = "[" + format + "]"
	}
	a := cbor.DefaultAllocator
	v, err := cbor.Pack(a, packFormat, packArgs...)
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	defer v.Free(a)

	buf := make([]byte, cbor.EncodeSize(v))
	n, err := cbor.Encode(v, buf)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	fmt.Println(hex.EncodeToString(buf[:n]))
	return nil
}

func runUnpack(hexStr, format string) error {
	if err := scalarFormat(format); err != nil {
		return err
	}
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return fmt.Errorf("decode hex: %w", err)
	}
	a := cbor.DefaultAllocator
	v, err := cbor.Decode(a, raw)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	defer v.Free(a)

	outs := make([]any, len(format))
	for i, tok := range format {
		switch tok {
		case 'u':
			outs[i] = new(uint64)
		case 's':
			outs[i] = new(string)
		}
	}
	unpackFormat := format
	if len(format) > 1 {
		unpackFormat = "[" + format + "]"
	}
	if err := cbor.Unpack(a, v, unpackFormat, outs...); err != nil {
		return fmt.Errorf("unpack: %w", err)
	}

	rendered := make([]string, len(format))
	for i, tok := range format {
		switch tok {
		case 'u':
			rendered[i] = strconv.FormatUint(*outs[i].(*uint64), 10)
		case 's':
			rendered[i] = *outs[i].(*string)
		}
	}
	fmt.Println(strings.Join(rendered, " "))
	return nil
}
