package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logging "highbuy-monitor/internal/infra/log"

	"go.uber.org/zap"
)

// DefaultSubscribersFile is where chat ids are persisted between restarts.
const DefaultSubscribersFile = "data_out/subscribers.json"

// LoadSubscribers reads the persisted chat id list. A missing or empty file
// is not an error and yields an empty list.
func LoadSubscribers(filePath string) ([]int64, error) {
	if filePath == "" {
		filePath = DefaultSubscribersFile
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		logging.LogDebug("Subscribers file does not exist, returning empty list", zap.String("file", filePath))
		return []int64{}, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read subscribers file: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "[]" {
		return []int64{}, nil
	}

	var chatIDs []int64
	if err := json.Unmarshal(data, &chatIDs); err != nil {
		return nil, fmt.Errorf("failed to parse subscribers JSON: %w", err)
	}

	logging.LogDebug("Loaded subscribers from file",
		zap.String("file", filePath),
		zap.Int("count", len(chatIDs)))

	return chatIDs, nil
}

// SaveSubscribers writes the chat id list atomically (temp file + rename) so
// a crash mid-write never leaves a truncated file behind.
func SaveSubscribers(filePath string, chatIDs []int64) error {
	if filePath == "" {
		filePath = DefaultSubscribersFile
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if chatIDs == nil {
		chatIDs = []int64{}
	}

	data, err := json.MarshalIndent(chatIDs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal subscribers JSON: %w", err)
	}

	tempFilePath := filePath + ".tmp"
	if err := os.WriteFile(tempFilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary subscribers file: %w", err)
	}

	if err := os.Rename(tempFilePath, filePath); err != nil {
		os.Remove(tempFilePath)
		return fmt.Errorf("failed to rename temporary file to subscribers file: %w", err)
	}

	logging.LogDebug("Saved subscribers to file",
		zap.String("file", filePath),
		zap.Int("count", len(chatIDs)))

	return nil
}
