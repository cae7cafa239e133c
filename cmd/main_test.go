package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/staffwise/internal/config"
	"github.com/okian/staffwise/internal/domain/types"
)

const fixture = `
project_requirements:
  - project_id: 1
    experience_level: intermediate
    required_skills: ["python", "sql"]
    quantity_needed: 1
    preferred_assignment_type: Full-Time
  - project_id: 2
    experience_level: beginner
    required_skills: '["HTML5"]'
    quantity_needed: 2
    preferred_assignment_type: Part-Time
user_details:
  - id: u-A
    employee_id: A
    job_title: Engineer
    status: available
    experience_level: intermediate
    skills: ["python"]
    total_available_hours: 40
  - id: u-B
    employee_id: B
    job_title: Engineer
    status: available
    experience_level: intermediate
    skills: ["python", "sql"]
    total_available_hours: 40
  - id: u-C
    employee_id: C
    job_title: Frontend Developer
    status: Available
    experience_level: beginner
    skills: '["html"]'
    total_available_hours: 18
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv() {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, config.EnvPrefix) {
			_ = os.Unsetenv(strings.SplitN(kv, "=", 2)[0])
		}
	}
}

func run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		cmd := newRootCmd()

		convey.Convey("Then every subcommand is registered", func() {
			names := []string{}
			for _, c := range cmd.Commands() {
				names = append(names, c.Name())
			}
			convey.So(names, convey.ShouldContain, "serve")
			convey.So(names, convey.ShouldContain, "recommend")
			convey.So(names, convey.ShouldContain, "import")
			convey.So(names, convey.ShouldContain, "version")
			convey.So(cmd.PersistentFlags().Lookup("config"), convey.ShouldNotBeNil)
		})

		convey.Convey("And version prints the build version", func() {
			out, err := run("version")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldEqual, "staffwise version: dev\n")
		})
	})
}

func TestRecommendCommand(t *testing.T) {
	convey.Convey("Given a memory source backed by a fixture file", t, func() {
		clearEnv()
		dir := t.TempDir()
		fixturePath := writeFile(t, dir, "fixture.yaml", fixture)
		cfgPath := writeFile(t, dir, "config.yaml",
			"source: memory\nfixtures_path: "+fixturePath+"\nworker_count: 2\n")

		convey.Convey("When recommending one project", func() {
			out, err := run("--config", cfgPath, "recommend", "--compact", "1")

			convey.Convey("Then the best match is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldEqual,
					`{"recommendations":[{"experience_level":"intermediate","required_skills":["python","sql"],"preferred_assignment_type":"Full-Time","recommended_employees":[{"employee_id":"B","user_id":"u-B","assignment_type":"Full-Time","assigned_hours":40,"allocation_percent":100.0,"total_available_hours":40}]}]}`+"\n")
			})
		})

		convey.Convey("When recommending several projects", func() {
			out, err := run("--config", cfgPath, "recommend", "2", "1")

			convey.Convey("Then results follow the argument order", func() {
				convey.So(err, convey.ShouldBeNil)
				var body types.BatchResponse
				convey.So(json.Unmarshal([]byte(out), &body), convey.ShouldBeNil)
				convey.So(len(body.Results), convey.ShouldEqual, 2)
				convey.So(body.Results[0].ProjectID, convey.ShouldEqual, int64(2))
				c := body.Results[0].Recommendations[0].RecommendedEmployees[0]
				convey.So(c.EmployeeID, convey.ShouldEqual, "C")
				convey.So(c.AssignedHours, convey.ShouldEqual, 15)
				convey.So(float64(c.AllocationPercent), convey.ShouldEqual, 37.5)
				convey.So(body.Results[1].ProjectID, convey.ShouldEqual, int64(1))
			})
		})

		convey.Convey("When the project id is not a number", func() {
			_, err := run("--config", cfgPath, "recommend", "x")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When no project id is given", func() {
			_, err := run("--config", cfgPath, "recommend")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestImportCommand(t *testing.T) {
	convey.Convey("Given a fixture file and an empty SQLite path", t, func() {
		clearEnv()
		dir := t.TempDir()
		fixturePath := writeFile(t, dir, "fixture.yaml", fixture)
		dbPath := filepath.Join(dir, "data", "staffwise.db")
		cfgPath := writeFile(t, dir, "config.yaml", "source: sqlite\nsqlite_path: "+dbPath+"\n")

		convey.Convey("When importing the fixture", func() {
			out, err := run("--config", cfgPath, "import", "--fixtures", fixturePath)

			convey.Convey("Then the rows land in the database", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "imported 2 project requirements and 3 users")

				rec, err := run("--config", cfgPath, "recommend", "--compact", "1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec, convey.ShouldContainSubstring, `"employee_id":"B"`)
				convey.So(rec, convey.ShouldNotContainSubstring, `"employee_id":"A"`)
			})
		})

		convey.Convey("When no fixture file is configured", func() {
			_, err := run("--config", cfgPath, "import")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestConfigErrors(t *testing.T) {
	convey.Convey("Given an invalid configuration", t, func() {
		clearEnv()
		cfgPath := writeFile(t, t.TempDir(), "config.yaml", "source: postgres\n")

		convey.Convey("Then commands fail before doing work", func() {
			_, err := run("--config", cfgPath, "recommend", "1")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "database_url")
		})
	})
}

func TestLoadtestGenerateCommand(t *testing.T) {
	convey.Convey("Given the loadtest generate command", t, func() {
		clearEnv()
		dir := t.TempDir()
		out := filepath.Join(dir, "synthetic.json")

		convey.Convey("When writing a small fixture", func() {
			msg, err := run("loadtest", "generate", "--seed", "3", "--employees", "20", "--projects", "4", "--requirements", "2", "-o", out)

			convey.Convey("Then the file serves recommendations", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(msg, convey.ShouldContainSubstring, "wrote 20 employees and 8 project requirements")

				cfgPath := writeFile(t, dir, "config.yaml", "source: memory\nfixtures_path: "+out+"\n")
				rec, err := run("--config", cfgPath, "recommend", "--compact", "2")
				convey.So(err, convey.ShouldBeNil)
				var body types.Response
				convey.So(json.Unmarshal([]byte(rec), &body), convey.ShouldBeNil)
				convey.So(len(body.Recommendations), convey.ShouldEqual, 2)
			})
		})
	})
}
