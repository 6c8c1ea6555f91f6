package logger

import (
	"encoding/json"
	"log"
	"os"
)

func Init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
}

func Info(msg string, fields map[string]any) {
	logLine("INFO", msg, fields)
}

func Error(msg string, fields map[string]any) {
	logLine("ERROR", msg, fields)
}

func Fatal(msg string, fields map[string]any) {
	logLine("FATAL", msg, fields)
	os.Exit(1)
}

func logLine(level, msg string, fields map[string]any) {
	entry := map[string]any{
		"level": level,
		"msg":   msg,
	}
	if len(fields) > 0 {
		entry["fields"] = fields
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Printf(`{"level":%q,"msg":%q}`, level, msg)
		return
	}
	log.Print(string(data))
}
