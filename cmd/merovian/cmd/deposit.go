package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"merovian.backend/cmd/merovian/internal/output"
	"merovian.backend/internal/domain/entities"
)

func newDepositCmd(a *app) *cobra.Command {
	var (
		qrFile string
		qrSize int
	)

	cmd := &cobra.Command{
		Use:   "deposit [asset]",
		Short: "Show deposit addresses",
		Long: `Without an argument, list every supported asset and its receiving
address. With an asset code, show that address; --qr writes its QR code
as a PNG file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.authedClient()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				var assets []entities.DepositAsset
				err := a.withRefresh(ctx, c, func() (err error) {
					assets, err = c.DepositAssets(ctx)
					return err
				})
				if err != nil {
					return err
				}
				if a.jsonOutput() {
					return output.JSON(assets)
				}
				rows := make([][]string, 0, len(assets))
				for _, as := range assets {
					rows = append(rows, []string{as.Code, as.Name, as.Chain.Name, as.Address})
				}
				output.Table([]string{"Code", "Asset", "Network", "Address"}, rows)
				return nil
			}

			var asset *entities.DepositAsset
			err = a.withRefresh(ctx, c, func() (err error) {
				asset, err = c.DepositAsset(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}

			if qrFile != "" {
				png, err := c.DepositQR(ctx, asset.Code, qrSize)
				if err != nil {
					return err
				}
				if err := os.WriteFile(qrFile, png, 0644); err != nil {
					return fmt.Errorf("write qr code: %w", err)
				}
			}

			if a.jsonOutput() {
				return output.JSON(asset)
			}
			output.Header(asset.Name + " deposit")
			output.KeyValue([][]string{
				{"Network", asset.Chain.Name},
				{"Address", asset.Address},
			})
			if qrFile != "" {
				output.Success("QR code saved to " + qrFile)
			}
			output.Blank()
			output.Warning("Send only " + asset.Symbol + " on " + asset.Chain.Name + " to this address.")
			return nil
		},
	}
	cmd.Flags().StringVar(&qrFile, "qr", "", "write the address QR code to this PNG file")
	cmd.Flags().IntVar(&qrSize, "size", 256, "QR code size in pixels")
	return cmd
}
