// Package main provides a CLI for checking ID numbers and generating valid
// South African ID numbers for test data.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"testadmin/internal/identity/idnumber"
	"testadmin/pkg/secrets"
)

type checkOutput struct {
	IDType      string `json:"id_type"`
	IDNumber    string `json:"id_number"`
	Valid       bool   `json:"valid"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Error       string `json:"error,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Citizenship string `json:"citizenship,omitempty"`
}

func main() {
	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
	checkType := checkCmd.String("type", string(idnumber.IDTypeSAID), "ID type: SA_ID, FOREIGN_ID or PASSPORT")
	checkPivot := checkCmd.Int("pivot", -1, "Century pivot (0-99). Derived from the current year if unset.")
	checkJSON := checkCmd.Bool("json", false, "Output as JSON")

	genCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	genDOB := genCmd.String("dob", "", "Birth date YYYY-MM-DD. Random adult if empty.")
	genGender := genCmd.String("gender", "", "male or female. Random if empty.")
	genCitizenship := genCmd.Int("citizenship", 0, "Citizenship digit (0 citizen, 1 permanent resident, 2 refugee)")
	genCount := genCmd.Int("n", 1, "Number of ID numbers to generate")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "check":
		_ = checkCmd.Parse(os.Args[2:])
		v := newValidator(*checkPivot)
		idType, err := idnumber.ParseIDType(*checkType)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		inputs := checkCmd.Args()
		if len(inputs) == 0 {
			inputs = readLines(os.Stdin)
		}
		if !runCheck(os.Stdout, v, idType, inputs, *checkJSON) {
			os.Exit(1)
		}
	case "generate":
		_ = genCmd.Parse(os.Args[2:])
		if err := runGenerate(os.Stdout, *genDOB, *genGender, *genCitizenship, *genCount); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	case "admin-token":
		if err := runAdminToken(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func newValidator(pivot int) *idnumber.Validator {
	opts := []idnumber.Option{idnumber.WithReferenceYear(time.Now().Year())}
	if pivot >= 0 {
		opts = append(opts, idnumber.WithCenturyPivot(pivot))
	}
	return idnumber.NewValidator(opts...)
}

func readLines(r io.Reader) []string {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// runCheck validates each input and reports whether all of them passed.
func runCheck(w io.Writer, v *idnumber.Validator, idType idnumber.IDType, inputs []string, asJSON bool) bool {
	allValid := true
	enc := json.NewEncoder(w)
	for _, raw := range inputs {
		out := check(v, idType, raw)
		allValid = allValid && out.Valid
		if asJSON {
			_ = enc.Encode(out)
			continue
		}
		if out.Valid {
			extra := ""
			if out.DateOfBirth != "" {
				extra = fmt.Sprintf("  dob=%s gender=%s citizenship=%s", out.DateOfBirth, out.Gender, out.Citizenship)
			}
			fmt.Fprintf(w, "OK    %s%s\n", raw, extra)
		} else {
			fmt.Fprintf(w, "FAIL  %s  [%s] %s\n", raw, out.ErrorKind, out.Error)
		}
	}
	return allValid
}

func check(v *idnumber.Validator, idType idnumber.IDType, raw string) checkOutput {
	out := checkOutput{IDType: string(idType), IDNumber: raw}
	outcome := v.Validate(idType, raw)
	out.Valid = outcome.Valid
	if !outcome.Valid {
		out.ErrorKind = string(outcome.Kind)
		out.Error = outcome.Message
		return out
	}
	if idType == idnumber.IDTypeSAID {
		details := v.ValidateSAID(raw).Details
		out.DateOfBirth = details.DateOfBirth.Format("2006-01-02")
		out.Gender = string(details.Gender)
		out.Citizenship = string(details.Citizenship)
	}
	return out
}

func runGenerate(w io.Writer, dob, gender string, citizenship, count int) error {
	if count < 1 {
		return fmt.Errorf("n must be positive")
	}
	for range count {
		birth, err := birthDate(dob)
		if err != nil {
			return err
		}
		seq, err := sequence(gender)
		if err != nil {
			return err
		}
		raw, err := idnumber.BuildSAID(birth.Format("060102"), seq, citizenship)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, raw)
	}
	return nil
}

func birthDate(dob string) (time.Time, error) {
	if dob == "" {
		// Between 18 and 60 years old.
		days := 18*365 + rand.IntN(42*365)
		return time.Now().UTC().AddDate(0, 0, -days), nil
	}
	t, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return time.Time{}, fmt.Errorf("dob must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

func sequence(gender string) (int, error) {
	switch strings.ToLower(gender) {
	case "female":
		return rand.IntN(5000), nil
	case "male":
		return 5000 + rand.IntN(5000), nil
	case "":
		return rand.IntN(10000), nil
	default:
		return 0, fmt.Errorf("gender must be male or female")
	}
}

// runAdminToken prints a fresh admin token and the bcrypt hash to configure
// as ADMIN_TOKEN.
func runAdminToken(w io.Writer) error {
	token, err := secrets.Generate()
	if err != nil {
		return err
	}
	hash, err := secrets.Hash(token)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "token: %s\nADMIN_TOKEN=%s\n", token, hash)
	return nil
}

func printUsage() {
	fmt.Println(`idcheck - ID number validation tool

Usage:
  idcheck check [flags] [ID_NUMBER...]   Validate ID numbers (reads stdin when none given)
  idcheck generate [flags]               Generate valid SA ID numbers
  idcheck admin-token                    Generate an admin token and its bcrypt hash

Check flags:
  -type string    ID type: SA_ID, FOREIGN_ID or PASSPORT (default "SA_ID")
  -pivot int      Century pivot 0-99 (default: current year)
  -json           Output one JSON object per line

Generate flags:
  -dob string         Birth date YYYY-MM-DD (default: random adult)
  -gender string      male or female (default: random)
  -citizenship int    0 citizen, 1 permanent resident, 2 refugee (default 0)
  -n int              How many to generate (default 1)

Examples:
  idcheck check 8001015009087
  idcheck check -type PASSPORT -json A1234567
  idcheck generate -dob 1995-06-30 -gender female -n 3`)
}
