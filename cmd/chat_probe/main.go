package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

var (
	baseURL = envOr("PROBE_BASE_URL", "http://localhost:3000/api")
	token   = os.Getenv("PROBE_TOKEN")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 180 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func uploadFile(name string, content []byte) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, nil, err
	}
	part.Write(content)
	writer.Close()

	req, err := http.NewRequest("POST", baseURL+"/attachment/v1", &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Chat Turn Probe\n")
	if token == "" {
		color.Red("PROBE_TOKEN is not set")
		os.Exit(1)
	}

	// 1. Create session
	color.Yellow("\n[1] Create chat session")
	resp, body, err := sendRequest("POST", "/chat/v1/session", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var sessionResp struct {
		Data struct {
			Id string `json:"id"`
		} `json:"data"`
	}
	json.Unmarshal(body, &sessionResp)
	sessionId := sessionResp.Data.Id
	fmt.Printf("Session: %s\n", sessionId)

	// 2. Models
	color.Yellow("\n[2] Model catalog")
	_, body, err = sendRequest("GET", "/chat/v1/models", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	var modelsResp map[string]interface{}
	json.Unmarshal(body, &modelsResp)
	prettyPrint(modelsResp)

	// 3. Upload a small text file
	color.Yellow("\n[3] Upload attachment")
	resp, body, err = uploadFile("notes.txt", []byte("The quarterly revenue target is 1.2M."))
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var uploadResp struct {
		Data struct {
			File struct {
				Id string `json:"id"`
			} `json:"file"`
		} `json:"data"`
	}
	json.Unmarshal(body, &uploadResp)
	fileId := uploadResp.Data.File.Id
	fmt.Printf("File: %s\n", fileId)

	// Give the extraction worker a moment.
	time.Sleep(2 * time.Second)

	// 4. Send a file-analysis turn
	color.Yellow("\n[4] Send chat with attachment")
	start := time.Now()
	resp, body, err = sendRequest("POST", "/chat/v1/send", map[string]interface{}{
		"chat_session_id": sessionId,
		"chat":            "What is the revenue target in the attached file?",
		"file_ids":        []string{fileId},
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s (%.1fs)", resp.Status, time.Since(start).Seconds())
	var sendResp map[string]interface{}
	json.Unmarshal(body, &sendResp)
	prettyPrint(sendResp)

	// 5. History
	color.Yellow("\n[5] Chat history")
	_, body, err = sendRequest("GET", "/chat/v1/session/"+sessionId+"/history", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	var histResp map[string]interface{}
	json.Unmarshal(body, &histResp)
	prettyPrint(histResp)

	color.Cyan("\n✅ Probe finished")
}
