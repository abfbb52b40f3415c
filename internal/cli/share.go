package cli

import (
	"fmt"

	"github.com/semmy-space/auth/internal/config"
	"github.com/semmy-space/auth/internal/output"
	"github.com/semmy-space/auth/internal/otpauth"
	"github.com/semmy-space/auth/internal/vault"
	"github.com/semmy-space/auth/pkg/browser"
)

// URICmd prints an entry's otpauth URI
type URICmd struct {
	Ref string `arg:"" help:"Entry name or #position" predictor:"entry"`
}

// Run executes the uri command
func (cmd *URICmd) Run(cfg *config.Config, fp *FormatterProvider, vp *VaultProvider) error {
	uri, _, err := entryURI(cfg, fp, vp, cmd.Ref)
	if err != nil {
		return err
	}
	fmt.Fprintln(fp.Out, uri)
	return nil
}

// QRCmd renders an entry's otpauth URI as a QR code for enrolling another
// authenticator
type QRCmd struct {
	Ref  string `arg:"" help:"Entry name or #position" predictor:"entry"`
	PNG  string `help:"Write a PNG to this path instead of drawing in the terminal" name:"png" type:"path" predictor:"file"`
	Size int    `help:"PNG size in pixels" default:"256"`
	Open bool   `help:"Open the PNG in the default viewer (requires --png)"`
}

// Run executes the qr command
func (cmd *QRCmd) Run(cfg *config.Config, fp *FormatterProvider, vp *VaultProvider) error {
	uri, name, err := entryURI(cfg, fp, vp, cmd.Ref)
	if err != nil {
		return err
	}

	if cmd.PNG != "" {
		if err := otpauth.WritePNG(uri, cmd.PNG, cmd.Size); err != nil {
			return errorFor(err)
		}
		fp.Formatter.PrintStatus(fmt.Sprintf("Wrote QR code for %s to %s", name, cmd.PNG))
		if cmd.Open {
			if err := browser.Open(cmd.PNG); err != nil {
				fp.Formatter.PrintHint(fmt.Sprintf("Could not open the image: %v", err))
			}
		}
		return nil
	}
	if cmd.Open {
		return &output.CLIError{Message: "--open needs --png", ExitCode: output.ExitUsage}
	}

	qr, err := otpauth.RenderQR(uri)
	if err != nil {
		return errorFor(err)
	}
	fmt.Fprint(fp.Out, qr)
	return nil
}

func entryURI(cfg *config.Config, fp *FormatterProvider, vp *VaultProvider, ref string) (uri, name string, err error) {
	var store *vault.Store
	store, err = vp.Store(fp)
	if err != nil {
		return "", "", err
	}
	name, err = resolveName(store, ref)
	if err != nil {
		return "", "", err
	}
	secret, _ := store.Get(name)

	uri, err = otpauth.BuildURI(name, secret, vp.Mode(), cfg.ResolvedIssuer())
	if err != nil {
		return "", "", errorFor(err)
	}
	return uri, name, nil
}
