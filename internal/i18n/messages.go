package i18n

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

const (
	ProgressHalfTitle         Key = "progress.halfTitle"
	ProgressHalfBody          Key = "progress.halfBody"
	ProgressThreeQuarterTitle Key = "progress.threeQuarterTitle"
	ProgressThreeQuarterBody  Key = "progress.threeQuarterBody"

	TimeAgoJustNow Key = "timeAgo.justNow"
	TimeAgoMinutes Key = "timeAgo.minutesAgo"
	TimeAgoHours   Key = "timeAgo.hoursAgo"
	TimeAgoDays    Key = "timeAgo.daysAgo"

	DeadlineOverdue  Key = "deadline.overdue"
	DeadlineToday    Key = "deadline.dueToday"
	DeadlineTomorrow Key = "deadline.dueTomorrow"
	DeadlineInDays   Key = "deadline.dueInDays"
	DeadlineDue      Key = "deadline.due"

	StatusAvailable Key = "taskStatus.available"
	StatusCooldown  Key = "taskStatus.cooldown"
	StatusCompleted Key = "taskStatus.completed"
	StatusActive    Key = "taskStatus.active"

	TaskTypeOneOff     Key = "tasks.oneTime"
	TaskTypeRepeatable Key = "tasks.repeatable"

	CooldownNone    Key = "cooldown.none"
	CooldownDaily   Key = "cooldown.daily"
	CooldownWeekly  Key = "cooldown.weekly"
	CooldownMonthly Key = "cooldown.monthly"

	RandomizerAddTasksFirst   Key = "randomizer.addTasksFirst"
	RandomizerAllOnCooldown   Key = "randomizer.allTasksOnCooldown"
	RandomizerSelected        Key = "randomizer.selected"
	RandomizerTasksAvailable  Key = "randomizer.tasksAvailable"
	ActiveTaskAccepted        Key = "active.accepted"
	ActiveTaskRemaining       Key = "active.remaining"
	ActiveTaskExpired         Key = "active.expired"
	ActiveTaskNone            Key = "active.none"
	ActiveTaskCompleted       Key = "messages.success.taskCompleted"
	ActiveTaskAbandoned       Key = "messages.success.taskAbandoned"
	TaskAdded                 Key = "messages.success.taskAdded"
	TaskUpdated               Key = "messages.success.taskUpdated"
	TaskMovedToTrash          Key = "messages.success.taskMovedToTrash"
	TaskRestored              Key = "messages.success.taskRestored"
	TaskDeletedPermanently    Key = "messages.success.taskDeletedPermanently"
	TaskQuickLogged           Key = "messages.success.taskQuickLogged"
	AllTrashCleared           Key = "messages.success.allTrashCleared"
	TrashAlreadyEmpty         Key = "messages.info.trashAlreadyEmpty"
	EverythingReset           Key = "messages.success.everythingReset"
	SampleTasksAdded          Key = "messages.success.sampleTasksAdded"
	CleanedUpTasks            Key = "messages.success.cleanedUpTasks"
	TasksExported             Key = "messages.success.tasksExported"
	TasksReplaced             Key = "messages.success.tasksReplaced"
	TasksMerged               Key = "messages.success.tasksMerged"
	TasksMergedWithSkips      Key = "messages.success.tasksMergedWithSkips"
	AllTasksAlreadyExist      Key = "messages.info.allTasksAlreadyExist"
	ErrTaskExists             Key = "messages.errors.taskExists"
	ErrTaskTooLong            Key = "messages.errors.taskTooLong"
	ErrPleaseEnterTask        Key = "messages.errors.pleaseEnterTask"
	ErrTaskNotAvailable       Key = "messages.errors.taskNotAvailable"
	ErrTaskNotFound           Key = "messages.errors.taskNotFound"
	ErrPleaseEnterReason      Key = "messages.errors.pleaseEnterReason"
	ErrNoTasksAvailable       Key = "messages.errors.noTasksAvailable"
	ErrCannotChangeActive     Key = "messages.errors.cannotChangeActive"
	ErrNoSelection            Key = "messages.errors.noSelection"
	ErrNoActiveTask           Key = "messages.errors.noActiveTask"
	SessionWelcome            Key = "session.welcome"
	SessionUnknownCommand     Key = "session.unknownCommand"
	SessionAbandonPrompt      Key = "session.abandonPrompt"
	SessionAbandonNotOptional Key = "session.abandonNotOptional"
	SessionBye                Key = "session.bye"
)

type translation struct {
	tag      language.Tag
	messages map[Key]any
}

var translations = []translation{
	{tag: English, messages: map[Key]any{
		ProgressHalfTitle:         "Task Progress: 50%% Complete",
		ProgressHalfBody:          "You're halfway through your task: %q. %d hours remaining.",
		ProgressThreeQuarterTitle: "Task Progress: 75%% Complete",
		ProgressThreeQuarterBody:  "You're three-quarters done with: %q. %d hours remaining.",

		TimeAgoJustNow: "just now",
		TimeAgoMinutes: plural.Selectf(1, "%d", "=1", "1 minute ago", "other", "%d minutes ago"),
		TimeAgoHours:   plural.Selectf(1, "%d", "=1", "1 hour ago", "other", "%d hours ago"),
		TimeAgoDays:    plural.Selectf(1, "%d", "=1", "1 day ago", "other", "%d days ago"),

		DeadlineOverdue:  plural.Selectf(1, "%d", "=1", "1 day overdue", "other", "%d days overdue"),
		DeadlineToday:    "Due today",
		DeadlineTomorrow: "Due tomorrow",
		DeadlineInDays:   "Due in %d days",
		DeadlineDue:      "Due %s",

		StatusAvailable: "Available",
		StatusCooldown:  "On cooldown until %s",
		StatusCompleted: "Completed",
		StatusActive:    "In progress",

		TaskTypeOneOff:     "One-time",
		TaskTypeRepeatable: "Repeatable",

		CooldownNone:    "No cooldown",
		CooldownDaily:   "Daily",
		CooldownWeekly:  "Weekly",
		CooldownMonthly: "Monthly",

		RandomizerAddTasksFirst:   "Add some tasks first!",
		RandomizerAllOnCooldown:   "All tasks are on cooldown or completed. Check back later!",
		RandomizerSelected:        "Your task: %s",
		RandomizerTasksAvailable:  "Tasks are available again!",
		ActiveTaskAccepted:        "Task accepted: %s. You have 8 hours to complete it.",
		ActiveTaskRemaining:       "%s remaining",
		ActiveTaskExpired:         "Time's up for: %s",
		ActiveTaskNone:            "No active task",
		ActiveTaskCompleted:       "Task completed! Great job!",
		ActiveTaskAbandoned:       "Task abandoned",
		TaskAdded:                 "Task added successfully!",
		TaskUpdated:               "Task updated successfully!",
		TaskMovedToTrash:          "Task moved to trash",
		TaskRestored:              "Task restored",
		TaskDeletedPermanently:    "Task deleted permanently",
		TaskQuickLogged:           "Task logged as completed",
		AllTrashCleared:           plural.Selectf(1, "%d", "=1", "1 task deleted permanently", "other", "%d tasks deleted permanently"),
		TrashAlreadyEmpty:         "Trash is already empty",
		EverythingReset:           "Everything has been reset",
		SampleTasksAdded:          plural.Selectf(1, "%d", "=1", "Added 1 sample task", "other", "Added %d sample tasks"),
		CleanedUpTasks:            plural.Selectf(1, "%d", "=1", "Moved 1 completed task to trash", "other", "Moved %d completed tasks to trash"),
		TasksExported:             "Tasks exported to %s",
		TasksReplaced:             "Replaced all tasks with %d imported tasks",
		TasksMerged:               "Imported %d new tasks",
		TasksMergedWithSkips:      "Imported %d new tasks (%d duplicates skipped)",
		AllTasksAlreadyExist:      "All tasks already exist (no new tasks imported)",
		ErrTaskExists:             "This task already exists!",
		ErrTaskTooLong:            "Task is too long (max 200 characters)",
		ErrPleaseEnterTask:        "Please enter a task",
		ErrTaskNotAvailable:       "This task is not available right now",
		ErrTaskNotFound:           "Task not found",
		ErrPleaseEnterReason:      "Please enter a reason for abandoning the task",
		ErrNoTasksAvailable:       "No tasks available",
		ErrCannotChangeActive:     "Cannot change the active task",
		ErrNoSelection:            "Randomize a task first",
		ErrNoActiveTask:           "There is no active task",
		SessionWelcome:            "dothis interactive session, type 'help' for the commands.",
		SessionUnknownCommand:     "Unknown command %q, type 'help' for the commands.",
		SessionAbandonPrompt:      "Why didn't you finish %q? Enter a reason:",
		SessionAbandonNotOptional: "The time is over, the task must be abandoned with a reason.",
		SessionBye:                "Bye!",
	}},
	{tag: German, messages: map[Key]any{
		ProgressHalfTitle:         "Aufgabenfortschritt: 50%% erledigt",
		ProgressHalfBody:          "Du hast die Hälfte deiner Aufgabe geschafft: %q. Noch %d Stunden.",
		ProgressThreeQuarterTitle: "Aufgabenfortschritt: 75%% erledigt",
		ProgressThreeQuarterBody:  "Du hast drei Viertel geschafft: %q. Noch %d Stunden.",

		TimeAgoJustNow: "gerade eben",
		TimeAgoMinutes: plural.Selectf(1, "%d", "=1", "vor 1 Minute", "other", "vor %d Minuten"),
		TimeAgoHours:   plural.Selectf(1, "%d", "=1", "vor 1 Stunde", "other", "vor %d Stunden"),
		TimeAgoDays:    plural.Selectf(1, "%d", "=1", "vor 1 Tag", "other", "vor %d Tagen"),

		DeadlineOverdue:  plural.Selectf(1, "%d", "=1", "1 Tag überfällig", "other", "%d Tage überfällig"),
		DeadlineToday:    "Heute fällig",
		DeadlineTomorrow: "Morgen fällig",
		DeadlineInDays:   "Fällig in %d Tagen",
		DeadlineDue:      "Fällig am %s",

		StatusAvailable: "Verfügbar",
		StatusCooldown:  "Pausiert bis %s",
		StatusCompleted: "Erledigt",
		StatusActive:    "In Arbeit",

		TaskTypeOneOff:     "Einmalig",
		TaskTypeRepeatable: "Wiederholbar",

		CooldownNone:    "Keine Pause",
		CooldownDaily:   "Täglich",
		CooldownWeekly:  "Wöchentlich",
		CooldownMonthly: "Monatlich",

		RandomizerAddTasksFirst:   "Füge zuerst ein paar Aufgaben hinzu!",
		RandomizerAllOnCooldown:   "Alle Aufgaben pausieren oder sind erledigt. Schau später wieder vorbei!",
		RandomizerSelected:        "Deine Aufgabe: %s",
		RandomizerTasksAvailable:  "Es sind wieder Aufgaben verfügbar!",
		ActiveTaskAccepted:        "Aufgabe angenommen: %s. Du hast 8 Stunden Zeit.",
		ActiveTaskRemaining:       "Noch %s",
		ActiveTaskExpired:         "Die Zeit ist abgelaufen für: %s",
		ActiveTaskNone:            "Keine aktive Aufgabe",
		ActiveTaskCompleted:       "Aufgabe erledigt! Gut gemacht!",
		ActiveTaskAbandoned:       "Aufgabe abgebrochen",
		TaskAdded:                 "Aufgabe hinzugefügt!",
		TaskUpdated:               "Aufgabe aktualisiert!",
		TaskMovedToTrash:          "Aufgabe in den Papierkorb verschoben",
		TaskRestored:              "Aufgabe wiederhergestellt",
		TaskDeletedPermanently:    "Aufgabe endgültig gelöscht",
		TaskQuickLogged:           "Aufgabe als erledigt eingetragen",
		AllTrashCleared:           plural.Selectf(1, "%d", "=1", "1 Aufgabe endgültig gelöscht", "other", "%d Aufgaben endgültig gelöscht"),
		TrashAlreadyEmpty:         "Der Papierkorb ist bereits leer",
		EverythingReset:           "Alles wurde zurückgesetzt",
		SampleTasksAdded:          plural.Selectf(1, "%d", "=1", "1 Beispielaufgabe hinzugefügt", "other", "%d Beispielaufgaben hinzugefügt"),
		CleanedUpTasks:            plural.Selectf(1, "%d", "=1", "1 erledigte Aufgabe in den Papierkorb verschoben", "other", "%d erledigte Aufgaben in den Papierkorb verschoben"),
		TasksExported:             "Aufgaben exportiert nach %s",
		TasksReplaced:             "Alle Aufgaben durch %d importierte Aufgaben ersetzt",
		TasksMerged:               "%d neue Aufgaben importiert",
		TasksMergedWithSkips:      "%d neue Aufgaben importiert (%d Duplikate übersprungen)",
		AllTasksAlreadyExist:      "Alle Aufgaben existieren bereits (keine neuen Aufgaben importiert)",
		ErrTaskExists:             "Diese Aufgabe existiert bereits!",
		ErrTaskTooLong:            "Die Aufgabe ist zu lang (max. 200 Zeichen)",
		ErrPleaseEnterTask:        "Bitte gib eine Aufgabe ein",
		ErrTaskNotAvailable:       "Diese Aufgabe ist gerade nicht verfügbar",
		ErrTaskNotFound:           "Aufgabe nicht gefunden",
		ErrPleaseEnterReason:      "Bitte gib einen Grund für den Abbruch an",
		ErrNoTasksAvailable:       "Keine Aufgaben verfügbar",
		ErrCannotChangeActive:     "Die aktive Aufgabe kann nicht geändert werden",
		ErrNoSelection:            "Würfle zuerst eine Aufgabe aus",
		ErrNoActiveTask:           "Es gibt keine aktive Aufgabe",
		SessionWelcome:            "dothis interaktive Sitzung, gib 'help' für die Befehle ein.",
		SessionUnknownCommand:     "Unbekannter Befehl %q, gib 'help' für die Befehle ein.",
		SessionAbandonPrompt:      "Warum hast du %q nicht geschafft? Gib einen Grund ein:",
		SessionAbandonNotOptional: "Die Zeit ist abgelaufen, die Aufgabe muss mit einem Grund abgebrochen werden.",
		SessionBye:                "Tschüss!",
	}},
}
