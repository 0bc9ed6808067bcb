package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nachoal/vision-chat-go/chat"
	"github.com/nachoal/vision-chat-go/config"
	"github.com/nachoal/vision-chat-go/imaging"
	"github.com/nachoal/vision-chat-go/internal/logging"
	"github.com/nachoal/vision-chat-go/llm"
	"github.com/nachoal/vision-chat-go/llm/openai"
	"github.com/nachoal/vision-chat-go/store"
	"github.com/nachoal/vision-chat-go/tui"
)

var (
	// Flags
	model     string
	maxTokens int
	dbPath    string
	imagePath string
	verbose   bool

	// Root command
	rootCmd = &cobra.Command{
		Use:   "vision-chat",
		Short: "Image+text chatbot with a local conversation log",
		Long:  "Vision Chat - a terminal chatbot that can optionally handle images and stores every exchange in SQLite",
		RunE:  runTUI,
	}

	// Ask command for one-shot queries
	askCmd = &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Send a one-shot prompt (with optional --image) without entering the TUI",
		RunE:  runAsk,
	}

	// History commands
	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Browse the stored conversation log",
	}

	historyListCmd = &cobra.Command{
		Use:   "list",
		Short: "Print all stored conversations, newest first",
		RunE:  runHistoryList,
	}

	historyExportCmd = &cobra.Command{
		Use:   "export <id> <file>",
		Short: "Decode a stored conversation's image back to a PNG file",
		Args:  cobra.ExactArgs(2),
		RunE:  runHistoryExport,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Multimodal model to use")
	rootCmd.PersistentFlags().IntVar(&maxTokens, "max-tokens", 0, "Response token budget")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite conversation log")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	askCmd.Flags().StringVarP(&imagePath, "image", "i", "", "Path to a PNG or JPEG to send with the prompt")

	// Add subcommands
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)

	// Bind flags to viper
	viper.BindPFlags(rootCmd.PersistentFlags())
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything a command body needs
type app struct {
	svc     *chat.Service
	store   *store.Store
	logger  *slog.Logger
	model   string
	cleanup func()
}

// setup resolves configuration (flags > environment > config file),
// halts when the API key is missing, and opens the shared resources.
func setup(fileOnlyLog bool) (*app, error) {
	configManager, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	if model == "" {
		model = config.GetEnv("VISION_CHAT_MODEL", configManager.GetModel())
	}
	if maxTokens == 0 {
		maxTokens = configManager.GetMaxTokens()
	}
	if dbPath == "" {
		dbPath = config.GetEnv("VISION_CHAT_DB", configManager.GetDatabasePath())
	}

	level := config.LogLevel()
	if verbose {
		level = slog.LevelDebug
	}

	var logger *slog.Logger
	var closeLog func() error
	if fileOnlyLog {
		logger, closeLog = logging.SetupFileOnly(config.LogFile(), level)
	} else {
		logger, closeLog = logging.Setup(config.LogFile(), level)
	}

	apiKey, err := config.RequireAPIKey()
	if err != nil {
		closeLog()
		return nil, err
	}

	client, err := openai.NewClient(
		llm.WithAPIKey(apiKey),
		llm.WithModel(model),
		llm.WithMaxTokens(maxTokens),
	)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		client.Close()
		closeLog()
		return nil, err
	}

	svc := chat.New(client, st, logger,
		chat.WithModel(model),
		chat.WithMaxTokens(maxTokens),
	)

	logger.Debug("startup", "model", model, "db", dbPath)

	return &app{
		svc:    svc,
		store:  st,
		logger: logger,
		model:  model,
		cleanup: func() {
			st.Close()
			client.Close()
			closeLog()
		},
	}, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.cleanup()

	p := tea.NewProgram(tui.New(a.svc, a.model))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.cleanup()

	prompt := strings.Join(args, " ")

	result, err := a.svc.Ask(context.Background(), prompt, imagePath)
	if err != nil {
		return err
	}

	// On API failure the stored record and the printed text are the
	// same literal error message
	fmt.Println(result.Response)

	return nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.cleanup()

	recs, err := a.store.All()
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		fmt.Println("No conversations found.")
		return nil
	}

	for i, rec := range recs {
		fmt.Printf("%d. [#%d] %s\n", i+1, rec.ID, rec.Timestamp)
		fmt.Printf("   You: %s\n", rec.UserPrompt)
		if rec.Base64Image != "" {
			if img, err := imaging.DecodeBase64(rec.Base64Image); err == nil {
				bounds := img.Bounds()
				fmt.Printf("   [image %dx%d]\n", bounds.Dx(), bounds.Dy())
			}
		}
		fmt.Printf("   Bot: %s\n", rec.BotResponse)
		if i < len(recs)-1 {
			fmt.Println("   ---")
		}
	}

	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.cleanup()

	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid conversation id %q", args[0])
	}

	rec, err := a.store.Get(uint(id))
	if err != nil {
		return err
	}
	if rec.Base64Image == "" {
		return fmt.Errorf("conversation %d has no stored image", id)
	}

	img, err := imaging.DecodeBase64(rec.Base64Image)
	if err != nil {
		return err
	}

	if err := imaging.WritePNG(img, args[1]); err != nil {
		return err
	}

	fmt.Printf("Exported image from conversation %d to %s\n", id, args[1])
	return nil
}
