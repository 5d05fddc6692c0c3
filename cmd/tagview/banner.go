package main

// GetBanner returns the banner shown in the root command help
func GetBanner() string {
	return `
████████╗ █████╗  ██████╗ ██╗   ██╗██╗███████╗██╗    ██╗
╚══██╔══╝██╔══██╗██╔════╝ ██║   ██║██║██╔════╝██║    ██║
   ██║   ███████║██║  ███╗██║   ██║██║█████╗  ██║ █╗ ██║
   ██║   ██╔══██║██║   ██║╚██╗ ██╔╝██║██╔══╝  ██║███╗██║
   ██║   ██║  ██║╚██████╔╝ ╚████╔╝ ██║███████╗╚███╔███╔╝
   ╚═╝   ╚═╝  ╚═╝ ╚═════╝   ╚═══╝  ╚═╝╚══════╝ ╚══╝╚══╝
`
}
