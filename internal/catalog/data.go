package catalog

// Default is the catalog published on the website.
var Default = mustNew(
	Section{
		Key:   "aura",
		Title: "Aura Management",
		Icon:  IconCommand,
		Commands: []Command{
			{"top", "View the aura points leaderboard", "!!top"},
			{"aura", "Check aura points for a user", "!!aura [@user]"},
			{"daily", "Request daily aura points", "!!daily"},
			{"trade", "Trade aura points with another user", "!!trade <@user> <card>"},
		},
	},
	Section{
		Key:   "daily",
		Title: "Daily Activities",
		Icon:  IconCommand,
		Commands: []Command{
			{"daily", "Claim your daily reward", "!!daily"},
			{"weekly", "Claim weekly reward", "!!weekly"},
		},
	},
	Section{
		Key:   "music",
		Title: "Music Commands",
		Icon:  IconMusic,
		Commands: []Command{
			{"join/leave", "Connect/Disconnect voice channel", "!!join\n!!leave"},
			{"play", "Play a song from YouTube or Spotify", "!!play <song name or URL>"},
			{"pause/resume", "Pause or resume playback", "!!pause\n!!resume"},
			{"next", "Skip current track", "!!next"},
			{"repeat/autoplay", "Toggle repeat/autoplay modes", "!!repeat\n!!autoplay"},
			{"volume", "Set volume", "!!volume <0-2>"},
			{"queue", "Display the current playlist", "!!queue"},
			{"settings", "Change music settings", "!!settings"},
			{"nightcore", "Toggle nightcore effect", "!!nightcore"},
			{"8D", "Toggle 8D audio effect", "!!8D"},
			{"vaporwave", "Toggle vaporwave effect", "!!vaporwave"},
			{"cleareffect", "Clear all audio effects", "!!cleareffect"},
		},
	},
	Section{
		Key:   "user",
		Title: "User Interaction",
		Icon:  IconCommand,
		Commands: []Command{
			{"userinfo", "Display user info", "!!userinfo [@user]"},
			{"profile", "View your profile", "!!profile [@user]"},
			{"setnick", "Change a member's nickname", "!!setnick <@user> <nickname>"},
			{"feedback", "Submit feedback", "!!feedback <message>"},
			{"avatar", "View user's avatar", "!!avatar [@user]"},
			{"afk", "Set AFK status", "!!afk [reason]"},
		},
	},
	Section{
		Key:   "server",
		Title: "Server Interaction",
		Icon:  IconShield,
		Commands: []Command{
			{"membercount", "Show server member count", "!!membercount"},
			{"auditlog", "View recent audit logs", "!!auditlog <amount>"},
			{"clonechannel", "Clone a channel", "!!clonechannel [#channel]"},
			{"purge", "Purge messages", "!!purge <amount>"},
			{"snipe", "Retrieve last deleted message", "!!snipe"},
			{"timer", "Set a countdown timer", "!!timer <seconds>"},
			{"instainfo", "Get Instagram info", "!!instainfo <URL>"},
			{"post", "Fetch Instagram posts", "!!post <user> [limit]"},
			{"instavideo", "Get Instagram video info", "!!instavideo <URL>"},
			{"cleanlinks", "Clean messages with links", "!!cleanlinks [amount]"},
			{"cleanfiles", "Clean messages with files", "!!cleanfiles [amount]"},
			{"cleanimages", "Clean messages with images", "!!cleanimages [amount]"},
		},
	},
	Section{
		Key:   "fun",
		Title: "Fun Commands",
		Icon:  IconSparkles,
		Commands: []Command{
			{"trivia", "Start a trivia game", "!!trivia"},
			{"rps", "Play Rock, Paper, Scissors", "!!rps"},
			{"dice", "Roll a dice", "!!dice"},
			{"coinflip", "Flip a coin", "!!coinflip"},
			{"flirt", "Flirt with someone", "!!flirt <@user>"},
			{"roast", "Roast someone", "!!roast <@user>"},
			{"love", "Love compatibility test", "!!love <@user>"},
			{"monopoly", "Start a monopoly game", "!!monopoly"},
			{"cuddle", "Cuddle someone", "!!cuddle <@user>"},
			{"hug", "Hug someone", "!!hug <@user>"},
			{"kiss", "Kiss someone", "!!kiss <@user>"},
			{"pat", "Pat someone", "!!pat <@user>"},
			{"slap", "Slap someone", "!!slap <@user>"},
			{"punch", "Punch someone", "!!punch <@user>"},
			{"bite", "Bite someone", "!!bite <@user>"},
			{"highfive", "High-five someone", "!!highfive <@user>"},
			{"wave", "Wave at someone", "!!wave <@user>"},
			{"boop", "Boop someone", "!!boop <@user>"},
			{"snuggle", "Snuggle with someone", "!!snuggle <@user>"},
			{"bully", "Bully someone (playfully)", "!!bully <@user>"},
			{"think", "Show you're thinking", "!!think"},
			{"akinator", "Play Akinator", "!!akinator"},
			{"wordle", "Play Wordle", "!!wordle"},
		},
	},
	Section{
		Key:   "shop",
		Title: "Shop System",
		Icon:  IconCommand,
		Commands: []Command{
			{"shop", "View available items in the shop", "!!shop"},
			{"buy", "Purchase an item from the shop", "!!buy <item>"},
		},
	},
	Section{
		Key:   "management",
		Title: "Server Management",
		Icon:  IconShield,
		Commands: []Command{
			{"kick/ban", "Remove members", "!!kick/ban <@user> [reason]"},
			{"settempvc", "Configure temp VCs", "!!settempvc <channel_id> <category_id>"},
			{"interface", "Open the temporary VC interface", "!!interface"},
			{"stickyvc", "Create or mark a sticky VC", "!!stickyvc [name]"},
			{"dev-announce", "Send a dev announcement", "!!dev-announce <message>"},
			{"setprefix", "Change the bot's prefix", "!!setprefix <new_prefix>"},
			{"setup", "Create a custom role command", "!!setup"},
			{"setlogchannel", "Set logging channel", "!!setlogchannel <#channel>"},
			{"setmentionlimit", "Set mention spam limit", "!!setmentionlimit <on/off> [limit]"},
			{"blocklinks", "Toggle link blocking", "!!blocklinks <on/off>"},
			{"setwelcome", "Set welcome message", "!!setwelcome <message>"},
		},
	},
	Section{
		Key:   "games",
		Title: "Aura Games",
		Icon:  IconGamepad,
		Commands: []Command{
			{"dropcard", "Get a random card", "!!dropcard"},
			{"mycards", "View your card collection", "!!mycards"},
			{"sellcard", "Sell a card for aura points", "!!sellcard <card>"},
		},
	},
	Section{
		Key:   "utility",
		Title: "Utility Commands",
		Icon:  IconCommand,
		Commands: []Command{
			{"search", "Search anything", "!!search [question]"},
			{"imagine", "Generate an image using AI", "!!imagine [prompt]"},
			{"describe", "Analyze an image using AI", "!!describe [image]"},
			{"math", "Solve math questions", "!!math [question]"},
			{"anime", "Get anime recommendations", "!!anime"},
			{"manga", "Get manga recommendations", "!!manga"},
			{"movie", "Fetch movie information", "!!movie [name]"},
			{"weather", "Get weather information", "!!weather <location>"},
			{"translate", "Translate text", "!!translate <lang> <text>"},
			{"tts", "Text to speech", "!!tts <text>"},
			{"finance", "Get financial information", "!!finance <query>"},
			{"unitconvert", "Convert units", "!!unitconvert <value> <from> to <to>"},
			{"programming", "Programming related queries", "!!programming <query>"},
			{"health", "Health related information", "!!health <query>"},
		},
	},
	Section{
		Key:   "moderation",
		Title: "Moderation",
		Icon:  IconShield,
		Commands: []Command{
			{"chatban", "Mute user from chat", "!!chatban @member [reason]"},
			{"vcban", "Ban from voice channels", "!!vcban @member [reason]"},
			{"vcmute", "Mute in voice channels", "!!vcmute @member"},
			{"vcdeafen", "Deafen in voice channels", "!!vcdeafen @member"},
			{"vcdrag", "Move everyone to a new channel", "!!vcdrag"},
			{"lock", "Lock a channel", "!!lock [#channel]"},
			{"unlock", "Unlock a channel", "!!unlock [#channel]"},
			{"lockall", "Lock all channels", "!!lockall [reason]"},
			{"unlockall", "Unlock all channels", "!!unlockall [reason]"},
			{"warn", "Warn a user", "!!warn <@user> [reason]"},
			{"mute", "Mute a user", "!!mute <@user> [duration] [reason]"},
			{"unmute", "Unmute a user", "!!unmute <@user>"},
		},
	},
)

func mustNew(sections ...Section) *Catalog {
	c, err := New(sections...)
	if err != nil {
		panic(err)
	}
	return c
}
