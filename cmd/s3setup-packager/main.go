package main

import "github.com/seagate/s3setup/cmd/s3setup-packager/cmd"

func main() {
	cmd.Execute()
}
