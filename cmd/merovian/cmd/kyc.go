package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"merovian.backend/cmd/merovian/internal/output"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/client"
)

func newKYCCmd(a *app) *cobra.Command {
	kycCmd := &cobra.Command{
		Use:   "kyc",
		Short: "Identity verification",
	}

	var (
		form      entities.KYCForm
		frontPath string
		backPath  string
	)

	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit identity details and both sides of your ID",
		Long: `Submit identity details with images of the front and back of your ID.

Your status becomes pending until the documents are reviewed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			s, err := a.session(ctx, c)
			if err != nil {
				return err
			}

			front, err := readUpload(frontPath)
			if err != nil {
				return err
			}
			back, err := readUpload(backPath)
			if err != nil {
				return err
			}

			res, err := client.NewFlows(c, s).SubmitKYC(ctx, form, front, back)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return output.JSON(res)
			}
			output.Success(res.Message)
			if res.Profile != nil {
				output.KeyValue([][]string{{"Status", output.FormatStatus(string(res.Profile.KYCStatus))}})
			}
			return nil
		},
	}
	f := submitCmd.Flags()
	f.StringVar(&form.FullLegalName, "name", "", "full legal name")
	f.StringVar(&form.DOB, "dob", "", "date of birth (YYYY-MM-DD)")
	f.StringVar(&form.IDNumber, "id-number", "", "ID or passport number")
	f.StringVar(&form.Country, "country", "", "country of residence")
	f.StringVar(&form.Address, "address", "", "street address")
	f.StringVar(&form.City, "city", "", "city")
	f.StringVar(&form.PostalCode, "postal-code", "", "postal code")
	f.StringVar(&frontPath, "front", "", "image of the front of the ID")
	f.StringVar(&backPath, "back", "", "image of the back of the ID")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show your submitted identity details",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			var details *entities.KYCDetails
			err = a.withRefresh(ctx, c, func() (err error) {
				details, err = c.KYC(ctx)
				return err
			})
			if client.IsStatus(err, http.StatusNotFound) {
				output.Info("No KYC submission yet. Run 'merovian kyc submit'.")
				return nil
			}
			if err != nil {
				return err
			}
			return a.printKYC(details)
		},
	}

	kycCmd.AddCommand(submitCmd, showCmd)
	return kycCmd
}

// readUpload loads a document. An empty path yields nil so the submit flow
// reports the missing side.
func readUpload(path string) (*client.UploadFile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return &client.UploadFile{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

func (a *app) printKYC(k *entities.KYCDetails) error {
	if a.jsonOutput() {
		return output.JSON(k)
	}
	output.Header("Identity details")
	output.KeyValue([][]string{
		{"Legal name", k.FullLegalName},
		{"Date of birth", k.DOB},
		{"ID number", k.IDNumber},
		{"Address", k.Address},
		{"City", k.City},
		{"Postal code", k.PostalCode},
		{"Country", k.Country},
		{"Front", k.DocumentFrontURL},
		{"Back", k.DocumentBackURL},
		{"Submitted", k.UpdatedAt.Format("2006-01-02 15:04")},
	})
	return nil
}
