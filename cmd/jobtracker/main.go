package main

import (
	"bufio"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/dom/jobtracker/internal/api/handlers"
	"github.com/dom/jobtracker/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.LoadCLI()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "register":
		err = authCmd(cfg, "register", args)
	case "login":
		err = authCmd(cfg, "login", args)
	case "logout":
		err = logoutCmd(cfg)
	case "me":
		err = meCmd(cfg)
	case "apps":
		err = appsCmd(cfg)
	case "add":
		err = addCmd(cfg, args)
	case "status":
		err = statusCmd(cfg, args)
	case "rm":
		err = rmCmd(cfg, args)
	case "resumes":
		err = resumesCmd(cfg)
	case "upload":
		err = uploadCmd(cfg, args)
	case "rm-resume":
		err = rmResumeCmd(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`jobtracker - command line client for the JobTracker API

USAGE:
  jobtracker <command> [options]

COMMANDS:
  register <username>          Create an account (prompts for a 4-digit PIN)
  login <username>             Log in and store the token
  logout                       Forget the stored token
  me                           Show the logged in account
  apps                         List job applications
  add --company --position     Add an application
  status <id> <status>         Change an application's status
  rm <id>                      Delete an application
  resumes                      List uploaded resumes
  upload --name <name> <file>  Upload a resume
  rm-resume <id>               Delete a resume
  help                         Show this help message

ENVIRONMENT:
  API_URL                Backend URL (default: http://localhost:8080)
  JOBTRACKER_TOKEN_FILE  Where the token is stored (default: user config dir)

EXAMPLES:
  jobtracker register alice
  jobtracker add --company=Acme --position="Backend Engineer" --tags=go,remote
  jobtracker status 3f1c... interviewing`)
}

func authCmd(cfg *config.CLIConfig, action string, args []string) error {
	fs := flag.NewFlagSet(action, flag.ExitOnError)
	pin := fs.String("pin", "", "4-digit PIN (prompted when omitted)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: jobtracker %s <username> [--pin=1234]", action)
	}
	username := fs.Arg(0)

	if *pin == "" {
		p, err := readPIN()
		if err != nil {
			return err
		}
		*pin = p
	}

	result, err := NewAPIClient(cfg.APIURL, "").Authenticate(username, *pin, action)
	if err != nil {
		return err
	}

	if err := saveToken(cfg.TokenFile, result.Token); err != nil {
		return err
	}
	fmt.Printf("OK (user id: %s)\n", result.UserID)
	return nil
}

func logoutCmd(cfg *config.CLIConfig) error {
	if err := os.Remove(cfg.TokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func meCmd(cfg *config.CLIConfig) error {
	client, err := authedClient(cfg)
	if err != nil {
		return err
	}

	user, err := client.Me()
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s), member since %s\n", user.Username, user.UserID, user.CreatedAt.Format("2006-01-02"))
	return nil
}

func appsCmd(cfg *config.CLIConfig) error {
	client, err := authedClient(cfg)
	if err != nil {
		return err
	}

	apps, err := client.ListApplications()
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		fmt.Println("No applications yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPANY\tPOSITION\tSTATUS\tAPPLIED\tTAGS")
	for _, app := range apps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			app.ID, app.Company, app.Position, app.Status, deref(app.AppliedDate), strings.Join(app.Tags, ","))
	}
	return w.Flush()
}

func addCmd(cfg *config.CLIConfig, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	company := fs.String("company", "", "Company name (required)")
	position := fs.String("position", "", "Position title (required)")
	status := fs.String("status", "", "Status (default wishlist)")
	location := fs.String("location", "", "Location")
	applied := fs.String("applied", "", "Applied date, YYYY-MM-DD")
	deadline := fs.String("deadline", "", "Deadline, YYYY-MM-DD")
	url := fs.String("url", "", "Posting URL")
	notes := fs.String("notes", "", "Notes")
	tags := fs.String("tags", "", "Comma separated tags")
	fs.Parse(args)

	client, err := authedClient(cfg)
	if err != nil {
		return err
	}

	req := handlers.ApplicationRequest{
		Company:     *company,
		Position:    *position,
		Status:      *status,
		Location:    optional(*location),
		AppliedDate: optional(*applied),
		Deadline:    optional(*deadline),
		URL:         optional(*url),
		Notes:       optional(*notes),
	}
	if *tags != "" {
		req.Tags = strings.Split(*tags, ",")
	}

	app, err := client.CreateApplication(req)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s (%s at %s, %s)\n", app.ID, app.Position, app.Company, app.Status)
	return nil
}

func statusCmd(cfg *config.CLIConfig, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: jobtracker status <id> <status>")
	}

	client, err := authedClient(cfg)
	if err != nil {
		return err
	}

	app, err := client.GetApplication(args[0])
	if err != nil {
		return err
	}

	updated, err := client.UpdateApplication(app.ID, handlers.ApplicationRequest{
		Company:     app.Company,
		Position:    app.Position,
		Location:    app.Location,
		Status:      args[1],
		AppliedDate: app.AppliedDate,
		URL:         app.URL,
		Notes:       app.Notes,
		ResumeURL:   app.ResumeURL,
		Deadline:    app.Deadline,
		Tags:        app.Tags,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s at %s is now %s\n", updated.Position, updated.Company, updated.Status)
	return nil
}

func rmCmd(cfg *config.CLIConfig, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: jobtracker rm <id>")
	}

	client, err := authedClient(cfg)
	if err != nil {
		return err
	}
	if err := client.DeleteApplication(args[0]); err != nil {
		return err
	}
	fmt.Println("Deleted")
	return nil
}

func resumesCmd(cfg *config.CLIConfig) error {
	client, err := authedClient(cfg)
	if err != nil {
		return err
	}

	resumes, err := client.ListResumes()
	if err != nil {
		return err
	}
	if len(resumes) == 0 {
		fmt.Println("No resumes yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFILE\tTYPE\tUPLOADED")
	for _, r := range resumes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.FileName, r.FileType, r.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func uploadCmd(cfg *config.CLIConfig, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	name := fs.String("name", "", "Display name (defaults to the file name)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: jobtracker upload [--name=<name>] <file>")
	}
	path := fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fileName := filepath.Base(path)
	if *name == "" {
		*name = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}
	fileType := mime.TypeByExtension(filepath.Ext(fileName))
	if fileType == "" {
		fileType = http.DetectContentType(data)
	}

	client, err := authedClient(cfg)
	if err != nil {
		return err
	}

	resume, err := client.UploadResume(handlers.ResumeRequest{
		Name:     *name,
		FileName: fileName,
		FileData: base64.StdEncoding.EncodeToString(data),
		FileType: fileType,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded %s (%s)\n", resume.Name, resume.ID)
	return nil
}

func rmResumeCmd(cfg *config.CLIConfig, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: jobtracker rm-resume <id>")
	}

	client, err := authedClient(cfg)
	if err != nil {
		return err
	}
	if err := client.DeleteResume(args[0]); err != nil {
		return err
	}
	fmt.Println("Deleted")
	return nil
}

func authedClient(cfg *config.CLIConfig) (*APIClient, error) {
	data, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.New("not logged in, run: jobtracker login <username>")
		}
		return nil, err
	}
	return NewAPIClient(cfg.APIURL, strings.TrimSpace(string(data))), nil
}

func saveToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

// readPIN prompts without echo on a terminal and reads a plain line otherwise.
func readPIN() (string, error) {
	fmt.Print("PIN: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		pin, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read pin: %w", err)
		}
		return strings.TrimSpace(string(pin)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read pin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
