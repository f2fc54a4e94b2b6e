package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"os"

	"github.com/memsim/memsim/pkg/types"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:        "memctl",
		Description: "a command line client for the memsim HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "base URL of the memsim server",
				Value:   "http://127.0.0.1:8080",
				EnvVars: []string{"MEMCTL_ADDR"},
			},
		},
		Commands: []*cli.Command{{
			Name:        "init",
			Description: "reset the arena to a single free block",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "size",
					Usage:    "total arena size in units",
					Required: true,
				},
			},
			Action: withClient(func(c *client, ctx *cli.Context) error {
				return c.post("/api/init", struct {
					TotalSize int `json:"total_size"`
				}{ctx.Int("size")})
			}),
		}, {
			Name:        "alloc",
			Aliases:     []string{"allocate"},
			Description: "allocate a block",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "size",
					Usage:    "block size in units",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "strategy",
					Usage: "placement strategy: first, best, or worst",
					Value: string(types.BestFit),
				},
			},
			Action: withClient(func(c *client, ctx *cli.Context) error {
				strategy, err := types.ParseStrategy(ctx.String("strategy"))
				if err != nil {
					return err
				}
				return c.post("/api/allocate", struct {
					Size     int            `json:"size"`
					Strategy types.Strategy `json:"strategy"`
				}{ctx.Int("size"), strategy})
			}),
		}, {
			Name:        "free",
			Aliases:     []string{"deallocate"},
			Description: "deallocate one or more blocks by id",
			Flags: []cli.Flag{
				&cli.IntSliceFlag{
					Name:     "id",
					Usage:    "block id; repeat for a batch",
					Required: true,
				},
			},
			Action: withClient(func(c *client, ctx *cli.Context) error {
				ids := ctx.IntSlice("id")
				if len(ids) == 1 {
					return c.post("/api/deallocate", struct {
						BlockID int `json:"block_id"`
					}{ids[0]})
				}
				return c.post("/api/deallocate_multiple", struct {
					BlockIDs []int `json:"block_ids"`
				}{ids})
			}),
		}, {
			Name:        "snapshot",
			Aliases:     []string{"list"},
			Description: "print the current block list",
			Action: withClient(func(c *client, ctx *cli.Context) error {
				return c.get("/api/snapshot")
			}),
		}, {
			Name:        "stats",
			Description: "print arena usage statistics",
			Action: withClient(func(c *client, ctx *cli.Context) error {
				return c.get("/api/stats")
			}),
		}},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type client struct {
	baseURL string
}

func withClient(
	f func(c *client, ctx *cli.Context) error,
) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		return f(&client{baseURL: ctx.String("addr")}, ctx)
	}
}

func (c *client) post(path string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request payload: %w", err)
	}
	rsp, err := http.Post(
		c.baseURL+path,
		"application/json",
		bytes.NewReader(data),
	)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	return c.print(path, rsp)
}

func (c *client) get(path string) error {
	rsp, err := http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return c.print(path, rsp)
}

func (c *client) print(path string, rsp *http.Response) error {
	defer rsp.Body.Close()
	data, err := ioutil.ReadAll(rsp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if rsp.StatusCode >= 300 {
		return fmt.Errorf("%s: %d: %s", path, rsp.StatusCode, data)
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, data, "", "  "); err != nil {
		// not JSON; print as-is
		fmt.Printf("%s\n", data)
		return nil
	}
	fmt.Printf("%s\n", indented.Bytes())
	return nil
}
