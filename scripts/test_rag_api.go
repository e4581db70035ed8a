package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
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

	client := &http.Client{} // No timeout; query sessions can run long
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Starting Query Engine API Smoke Test\n")

	clinicianToken := os.Getenv("CLINICIAN_TOKEN")
	if clinicianToken == "" {
		color.Red("CLINICIAN_TOKEN not set (a JWT with role=clinician)")
		os.Exit(1)
	}

	// 1. Upload a document
	color.Yellow("\n[CLINICIAN] 1. Create Document")
	docReq := map[string]interface{}{
		"title":          "Anticoagulation Protocol",
		"content":        "Warfarin dosing is adjusted to the INR target range. Patients on warfarin require regular INR monitoring.",
		"document_class": "protocol",
	}
	resp, body, err := sendRequest("POST", "/document/v1", clinicianToken, docReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var createResp map[string]interface{}
	json.Unmarshal(body, &createResp)
	prettyPrint(createResp)

	// 2. List documents (index status should move pending -> indexed)
	color.Yellow("\n[CLINICIAN] 2. List Documents")
	resp, body, err = sendRequest("GET", "/document/v1", clinicianToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var listResp map[string]interface{}
	json.Unmarshal(body, &listResp)
	prettyPrint(listResp)

	// 3. Raw passage search
	color.Yellow("\n[CLINICIAN] 3. Search Passages")
	searchReq := map[string]interface{}{
		"query": "warfarin monitoring",
		"top_k": 5,
	}
	resp, body, err = sendRequest("POST", "/rag/v1/search", clinicianToken, searchReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var searchResp map[string]interface{}
	json.Unmarshal(body, &searchResp)
	prettyPrint(searchResp)

	// 4. Full query session
	color.Yellow("\n[CLINICIAN] 4. Run Query Session")
	queryReq := map[string]interface{}{
		"question": "How is warfarin dosing monitored?",
	}
	resp, body, err = sendRequest("POST", "/rag/v1/query", clinicianToken, queryReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var queryResp map[string]interface{}
	json.Unmarshal(body, &queryResp)
	prettyPrint(queryResp)

	if data, ok := queryResp["data"].(map[string]interface{}); ok {
		status, _ := data["status"].(string)
		citations, _ := data["citations"].([]interface{})
		if status == "answered" && len(citations) > 0 {
			color.Green("\n✅ Query answered with %d citation(s)", len(citations))
		} else {
			color.Yellow("\n⚠️ Query finished with status=%s, citations=%d", status, len(citations))
		}
	}

	color.Cyan("\nDone.")
}
