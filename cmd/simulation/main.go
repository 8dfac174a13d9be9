package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type sessionView struct {
	Id              string   `json:"id"`
	State           string   `json:"state"`
	CurrentTitle    string   `json:"current_title"`
	CurrentQuestion string   `json:"current_question"`
	TopicsCompleted []string `json:"topics_completed"`
	TotalTopics     int      `json:"total_topics"`
}

type turnView struct {
	Outcome string      `json:"outcome"`
	Nudge   string      `json:"nudge"`
	Session sessionView `json:"session"`
}

type generateView struct {
	Issues          []string `json:"issues"`
	Attempts        int      `json:"attempts"`
	LayoutApplied   bool     `json:"layout_applied"`
	DurationSeconds float64  `json:"duration_seconds"`
	FlowGraph       string   `json:"flow_graph"`
}

// scripted answers for a hiring process, cycled until the interview ends
var answers = []string{
	"The process starts when a department head reports a vacancy to the owner.",
	"The owner writes a job ad and publishes it on our website and the job portal.",
	"Applications arrive by email. The office manager collects them in a folder.",
	"The owner and the foreman review the applications and invite two or three candidates.",
	"If a candidate is convinced after a trial day, the owner makes an offer; otherwise we invite the next one.",
	"The office manager prepares the contract and registers the new employee with health insurance.",
	"The process ends when the signed contract is filed and the first working day is scheduled.",
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api/interview/v1", "interview API base URL")
	processType := flag.String("process", "Personalmanagement", "process type to interview about")
	maxTurns := flag.Int("turns", 20, "safety bound on submitted answers")
	out := flag.String("out", "process.bpmn", "where to write the generated model")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Minute}

	color.Cyan("=== BPMN Interview Simulation ===")

	var created struct {
		Id string `json:"id"`
	}
	must(call(client, http.MethodPost, *baseURL, nil, &created))
	color.Green("Session created: %s", created.Id)
	sessionURL := *baseURL + "/" + created.Id

	var view sessionView
	must(call(client, http.MethodPost, sessionURL+"/start", map[string]string{"process_type": *processType}, &view))
	printQuestion(view)

	for turn := 0; view.State == "active" && turn < *maxTurns; turn++ {
		answer := answers[turn%len(answers)]
		fmt.Printf("%s %s\n", color.BlueString("USER:"), answer)

		start := time.Now()
		var res turnView
		if err := call(client, http.MethodPost, sessionURL+"/answer", map[string]string{"answer": answer}, &res); err != nil {
			color.Red("Turn failed: %v", err)
			os.Exit(1)
		}
		color.White("(%s, %v)", res.Outcome, time.Since(start).Round(time.Millisecond))
		if res.Nudge != "" {
			color.Yellow("NUDGE: %s", res.Nudge)
		}
		view = res.Session
		printQuestion(view)
	}

	if view.State != "complete" {
		color.Yellow("Interview not complete after %d turns, generating anyway", *maxTurns)
	}

	color.Cyan("\nGenerating BPMN model...")
	var gen generateView
	must(call(client, http.MethodPost, sessionURL+"/generate", nil, &gen))
	color.Green("Done in %.1fs, %d repair attempts, layout applied: %v", gen.DurationSeconds, gen.Attempts, gen.LayoutApplied)
	for _, issue := range gen.Issues {
		color.Yellow("Remaining issue: %s", issue)
	}
	fmt.Println(gen.FlowGraph)

	resp, err := client.Get(sessionURL + "/bpmn")
	must(err)
	defer resp.Body.Close()
	xml, err := io.ReadAll(resp.Body)
	must(err)
	must(os.WriteFile(*out, xml, 0o644))
	color.Green("Model written to %s", *out)
}

func printQuestion(v sessionView) {
	fmt.Println()
	color.Magenta("[%s] %d/%d topics", v.CurrentTitle, len(v.TopicsCompleted), v.TotalTopics)
	fmt.Printf("%s %s\n", color.GreenString("AI:"), v.CurrentQuestion)
}

func call(client *http.Client, method, url string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (%s): %w", resp.Status, err)
	}
	if !env.Success {
		return fmt.Errorf("%d: %s", env.Code, env.Message)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func must(err error) {
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
