package workflow

var successMessages = map[Action]string{
	ActionInitialize:     "Will account initialized successfully! You can now create your will.",
	ActionCreateWill:     "Will created successfully! Your digital legacy is now secured.",
	ActionPing:           "Ping sent successfully! Your inactivity timer has been reset.",
	ActionClaim:          "Will claimed successfully!",
	ActionSetRecipient:   "Recipient set successfully! You can now deposit funds.",
	ActionDeposit:        "Funds deposited successfully! You can now initialize your will.",
	ActionInitializeWill: "Will initialized successfully! Your digital legacy is now secured.",
}

var failureMessages = map[Action]string{
	ActionInitialize:     "Failed to initialize",
	ActionCreateWill:     "Failed to create will",
	ActionPing:           "Failed to ping",
	ActionClaim:          "Failed to claim will",
	ActionSetRecipient:   "Failed to set recipient",
	ActionDeposit:        "Failed to deposit funds",
	ActionInitializeWill: "Failed to initialize will",
}

// SuccessMessage 操作成功提示
func SuccessMessage(a Action) string {
	return successMessages[a]
}

// FailureMessage 操作失败的默认提示
func FailureMessage(a Action) string {
	if msg, ok := failureMessages[a]; ok {
		return msg
	}
	return "Action failed"
}
